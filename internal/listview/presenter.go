// Package listview renders workouts as summary entries and resolves clicks on them.
package listview

import (
	"strconv"

	"example.com/workoutmap/internal/domain"
)

// ControlDelete marks the close button inside an entry.
const ControlDelete = "close"

// Detail is one icon/value/unit row of an entry.
type Detail struct {
	Icon  string `json:"icon"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// Entry is the summary shown for one workout; ID is the lookup key for clicks.
type Entry struct {
	ID      string      `json:"id"`
	Kind    domain.Kind `json:"kind"`
	Title   string      `json:"title"`
	Details []Detail    `json:"details"`
}

// List is the list-rendering collaborator.
type List interface {
	Append(e Entry)
	Remove(id string) bool
}

// Element is one node on the path from the clicked target outwards.
type Element struct {
	EntryID string `json:"entry_id,omitempty"`
	Control string `json:"control,omitempty"`
}

// Click lists the elements under the pointer, innermost first.
type Click struct {
	Path []Element `json:"path"`
}

// Selection is the entry a click landed on.
type Selection struct {
	ID     string
	Delete bool
}

// Presenter appends and removes entries and maps clicks back to workout ids.
type Presenter struct {
	list     List
	rendered map[string]struct{}
}

// NewPresenter constructs a Presenter writing to list.
func NewPresenter(list List) *Presenter {
	return &Presenter{list: list, rendered: make(map[string]struct{})}
}

// Render appends the entry for w.
func (p *Presenter) Render(w domain.Workout) {
	p.list.Append(EntryFor(w))
	p.rendered[w.ID] = struct{}{}
}

// Remove drops the entry keyed by id.
func (p *Presenter) Remove(id string) {
	p.list.Remove(id)
	delete(p.rendered, id)
}

// FindClicked returns the entry enclosing the click target, or ok=false when the click
// missed every entry. A delete control between the target and the entry flags Delete.
func (p *Presenter) FindClicked(c Click) (Selection, bool) {
	deleteHit := false
	for _, el := range c.Path {
		if el.Control == ControlDelete {
			deleteHit = true
		}
		if el.EntryID == "" {
			continue
		}
		if _, ok := p.rendered[el.EntryID]; !ok {
			return Selection{}, false
		}
		return Selection{ID: el.EntryID, Delete: deleteHit}, true
	}
	return Selection{}, false
}

// EntryFor builds the summary for w.
func EntryFor(w domain.Workout) Entry {
	e := Entry{
		ID:    w.ID,
		Kind:  w.Kind,
		Title: w.Description,
		Details: []Detail{
			{Icon: w.Kind.Icon(), Value: formatNumber(w.DistanceKm), Unit: "km"},
			{Icon: "⏱", Value: formatNumber(w.DurationMin), Unit: "min"},
		},
	}

	switch w.Kind {
	case domain.KindRunning:
		e.Details = append(e.Details,
			Detail{Icon: "⚡️", Value: strconv.FormatFloat(w.Metric(), 'f', 1, 64), Unit: "min/km"},
			Detail{Icon: "🦶🏼", Value: strconv.Itoa(int(w.Extra())), Unit: "spm"},
		)
	case domain.KindCycling:
		e.Details = append(e.Details,
			Detail{Icon: "⚡️", Value: strconv.FormatFloat(w.Metric(), 'f', 1, 64), Unit: "km/h"},
			Detail{Icon: "⛰", Value: formatNumber(w.Extra()), Unit: "m"},
		)
	}
	return e
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
