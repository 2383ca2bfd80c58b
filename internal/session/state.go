// Package session drives one workout-logging session: a pure transition function over
// explicit state, a controller applying the resulting effects, and a single-goroutine loop.
package session

import (
	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/listview"
)

// Mode is the controller's position in its lifecycle.
type Mode string

const (
	// ModeAwaitingMap waits for a position to centre the map on.
	ModeAwaitingMap Mode = "awaiting_map"
	// ModeIdle has a ready map and a hidden form.
	ModeIdle Mode = "idle"
	// ModeFormOpen shows the form for the last clicked position.
	ModeFormOpen Mode = "form_open"
	// ModeMapUnavailable means no position was obtained. Listing and deleting still work.
	ModeMapUnavailable Mode = "map_unavailable"
)

// State is the full controller state. Step never mutates the value it is given.
type State struct {
	Mode     Mode
	Workouts []domain.Workout
	// Pending is the map position captured by the last click while the form is open.
	Pending  *domain.Position
	FormKind domain.Kind
	MapReady bool
	Restored bool
}

// Find returns the workout with id.
func (s State) Find(id string) (domain.Workout, bool) {
	for _, w := range s.Workouts {
		if w.ID == id {
			return w, true
		}
	}
	return domain.Workout{}, false
}

// Event is an input to the state machine.
type Event interface {
	event()
}

// Restored carries the records loaded from storage at startup.
type Restored struct {
	Workouts []domain.Workout
}

// MapReady reports the position the map should open on.
type MapReady struct {
	Center domain.Position
}

// GeolocationFailed reports that no starting position could be obtained.
type GeolocationFailed struct {
	Err error
}

// MapClicked is a click on the map.
type MapClicked struct {
	Position domain.Position
}

// TypeChanged is the form's running/cycling toggle.
type TypeChanged struct {
	Kind domain.Kind
}

// FormSubmitted carries the raw form fields. An empty Type uses the current toggle.
type FormSubmitted struct {
	Form domain.FormInput
}

// FormCancelled closes the form without creating anything.
type FormCancelled struct{}

// EntryClicked is a click on a list entry, Delete when it hit the close control.
type EntryClicked struct {
	ID     string
	Delete bool
}

// ListClicked is an unresolved click inside the list. The controller turns it into
// EntryClicked using the list presenter; the machine never sees it.
type ListClicked struct {
	Click listview.Click
}

func (Restored) event()          {}
func (MapReady) event()          {}
func (GeolocationFailed) event() {}
func (MapClicked) event()        {}
func (TypeChanged) event()       {}
func (FormSubmitted) event()     {}
func (FormCancelled) event()     {}
func (EntryClicked) event()      {}
func (ListClicked) event()       {}

// Effect is a side-effect instruction for the collaborators.
type Effect interface {
	effect()
}

type (
	// InitMap builds the map around Center.
	InitMap struct {
		Center domain.Position
		Zoom   int
	}
	// PlaceMarker adds a workout's marker with its popup.
	PlaceMarker struct {
		Workout domain.Workout
	}
	// RemoveMarker drops the markers of a deleted workout.
	RemoveMarker struct {
		WorkoutID string
	}
	// CenterOn pans the map to Position at Zoom.
	CenterOn struct {
		Position domain.Position
		Zoom     int
	}
	// RenderEntry appends a workout's entry to the list.
	RenderEntry struct {
		Workout domain.Workout
	}
	// RemoveEntry drops a list entry by workout id.
	RemoveEntry struct {
		ID string
	}
	// Save persists the whole collection.
	Save struct {
		Workouts []domain.Workout
	}
	// ShowForm reveals the form for a click at Position.
	ShowForm struct {
		Position domain.Position
		Kind     domain.Kind
	}
	// HideForm hides the form and clears its fields.
	HideForm struct{}
	// ToggleFields shows the cadence field for runs and the elevation field for rides.
	ToggleFields struct {
		Kind domain.Kind
	}
	// Alert is a user-facing message. Err is set when it reports a rejected input.
	Alert struct {
		Message string
		Err     error
	}
)

func (InitMap) effect()      {}
func (PlaceMarker) effect()  {}
func (RemoveMarker) effect() {}
func (CenterOn) effect()     {}
func (RenderEntry) effect()  {}
func (RemoveEntry) effect()  {}
func (Save) effect()         {}
func (ShowForm) effect()     {}
func (HideForm) effect()     {}
func (ToggleFields) effect() {}
func (Alert) effect()        {}
