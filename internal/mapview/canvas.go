package mapview

import (
	"sort"
	"sync"

	"example.com/workoutmap/internal/domain"
)

// View is the current viewport.
type View struct {
	Center   domain.Position `json:"center"`
	Zoom     int             `json:"zoom"`
	Animate  bool            `json:"animate"`
	HasView  bool            `json:"ready"`
	Revision int64           `json:"revision"`
}

// PlacedMarker is a marker together with its id.
type PlacedMarker struct {
	ID MarkerID `json:"id"`
	Marker
}

// Snapshot is everything a frontend needs to draw the map.
type Snapshot struct {
	View    View           `json:"view"`
	Tiles   []TileLayer    `json:"tiles"`
	Markers []PlacedMarker `json:"markers"`
}

// Canvas is an in-process Map that frontends poll through Snapshot.
// It is safe for concurrent readers while the session writes to it.
type Canvas struct {
	mu      sync.RWMutex
	view    View
	tiles   []TileLayer
	markers map[MarkerID]Marker
	nextID  MarkerID
}

// NewCanvas returns an empty Canvas.
func NewCanvas() *Canvas {
	return &Canvas{markers: make(map[MarkerID]Marker)}
}

// SetView implements Map.
func (c *Canvas) SetView(center domain.Position, zoom int, animate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = View{
		Center:   center,
		Zoom:     zoom,
		Animate:  animate,
		HasView:  true,
		Revision: c.view.Revision + 1,
	}
}

// AddTileLayer implements Map.
func (c *Canvas) AddTileLayer(layer TileLayer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tiles = append(c.tiles, layer)
}

// AddMarker implements Map.
func (c *Canvas) AddMarker(m Marker) MarkerID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.markers[c.nextID] = m
	return c.nextID
}

// RemoveMarker implements Map.
func (c *Canvas) RemoveMarker(id MarkerID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.markers[id]; !ok {
		return false
	}
	delete(c.markers, id)
	return true
}

// Snapshot copies the current state, markers in placement order.
func (c *Canvas) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		View:    c.view,
		Tiles:   append([]TileLayer(nil), c.tiles...),
		Markers: make([]PlacedMarker, 0, len(c.markers)),
	}
	for id, m := range c.markers {
		snap.Markers = append(snap.Markers, PlacedMarker{ID: id, Marker: m})
	}
	sort.Slice(snap.Markers, func(i, j int) bool { return snap.Markers[i].ID < snap.Markers[j].ID })
	return snap
}
