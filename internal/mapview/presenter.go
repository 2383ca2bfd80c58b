// Package mapview turns workouts into map markers and drives the map viewport.
package mapview

import (
	"errors"
	"fmt"

	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/geolocation"
)

// ErrNotInitialized is returned by marker and view operations before Initialize succeeds.
var ErrNotInitialized = errors.New("map not initialized")

// MarkerID identifies a marker on a Map.
type MarkerID int64

// Popup describes the bubble attached to a marker.
type Popup struct {
	Content      string `json:"content"`
	AutoClose    bool   `json:"autoClose"`
	CloseOnClick bool   `json:"closeOnClick"`
	ClassName    string `json:"className"`
	MinWidth     int    `json:"minWidth"`
	MaxWidth     int    `json:"maxWidth"`
}

// Marker is a pin with an open popup.
type Marker struct {
	WorkoutID string          `json:"workoutId"`
	Position  domain.Position `json:"position"`
	Popup     Popup           `json:"popup"`
}

// TileLayer is the raster source shown under the markers.
type TileLayer struct {
	URLTemplate string `json:"urlTemplate"`
	Attribution string `json:"attribution"`
}

// Map is the map-rendering collaborator.
type Map interface {
	SetView(center domain.Position, zoom int, animate bool)
	AddTileLayer(layer TileLayer)
	AddMarker(m Marker) MarkerID
	RemoveMarker(id MarkerID) bool
}

const (
	popupMinWidth = 100
	popupMaxWidth = 250
)

// Presenter places one marker per call and remembers which markers belong to which workout.
type Presenter struct {
	m           Map
	tiles       TileLayer
	initialized bool
	markers     map[string][]MarkerID
}

// NewPresenter constructs a Presenter drawing on m with the given tile layer.
func NewPresenter(m Map, tiles TileLayer) *Presenter {
	return &Presenter{m: m, tiles: tiles, markers: make(map[string][]MarkerID)}
}

// Initialize centres the map and adds the tile layer. A center that is not a valid
// position fails with geolocation.ErrUnavailable.
func (p *Presenter) Initialize(center domain.Position, zoom int) error {
	if err := center.Validate(); err != nil {
		return fmt.Errorf("%w: map center: %v", geolocation.ErrUnavailable, err)
	}
	p.m.SetView(center, zoom, false)
	p.m.AddTileLayer(p.tiles)
	p.initialized = true
	return nil
}

// Ready reports whether Initialize has succeeded.
func (p *Presenter) Ready() bool {
	return p.initialized
}

// PlaceMarker adds a marker for w. Calling it twice for the same workout adds two markers.
func (p *Presenter) PlaceMarker(w domain.Workout) error {
	if !p.initialized {
		return ErrNotInitialized
	}
	id := p.m.AddMarker(MarkerFor(w))
	p.markers[w.ID] = append(p.markers[w.ID], id)
	return nil
}

// RemoveMarkers drops every marker placed for the workout and reports how many were removed.
func (p *Presenter) RemoveMarkers(workoutID string) int {
	removed := 0
	for _, id := range p.markers[workoutID] {
		if p.m.RemoveMarker(id) {
			removed++
		}
	}
	delete(p.markers, workoutID)
	return removed
}

// CenterOn animates the view to pos.
func (p *Presenter) CenterOn(pos domain.Position, zoom int) error {
	if !p.initialized {
		return ErrNotInitialized
	}
	p.m.SetView(pos, zoom, true)
	return nil
}

// MarkerFor builds the marker and popup shown for w.
func MarkerFor(w domain.Workout) Marker {
	return Marker{
		WorkoutID: w.ID,
		Position:  w.Position,
		Popup: Popup{
			Content:      fmt.Sprintf("%s %s", w.Kind.Icon(), w.Description),
			AutoClose:    false,
			CloseOnClick: false,
			ClassName:    fmt.Sprintf("%s-popup", w.Kind),
			MinWidth:     popupMinWidth,
			MaxWidth:     popupMaxWidth,
		},
	}
}
