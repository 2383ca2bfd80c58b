package session

import (
	"fmt"
	"slices"

	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/geolocation"
)

const geolocationAlert = "Could not get your position"

// Machine is the transition function of a session. It holds no mutable state; the
// factory's clock and id generator are its only inputs besides the state and event.
type Machine struct {
	factory *domain.Factory
	zoom    int
}

// NewMachine constructs a Machine building workouts with factory and opening the map at zoom.
func NewMachine(factory *domain.Factory, zoom int) *Machine {
	return &Machine{factory: factory, zoom: zoom}
}

// Initial is the startup state.
func (m *Machine) Initial() State {
	return State{Mode: ModeAwaitingMap, FormKind: domain.KindRunning}
}

// Accepts reports whether ev changes anything in st. Step returns st unchanged and no
// effects for events it does not accept.
func (m *Machine) Accepts(st State, ev Event) bool {
	switch e := ev.(type) {
	case Restored:
		return !st.Restored
	case MapReady, GeolocationFailed:
		return st.Mode == ModeAwaitingMap
	case MapClicked:
		return st.Mode == ModeIdle || st.Mode == ModeFormOpen
	case TypeChanged:
		return true
	case FormSubmitted, FormCancelled:
		return st.Mode == ModeFormOpen && st.Pending != nil
	case EntryClicked:
		_, ok := st.Find(e.ID)
		return ok
	default:
		return false
	}
}

// Step maps (state, event) to the next state and the effects to apply, in order.
func (m *Machine) Step(st State, ev Event) (State, []Effect) {
	if !m.Accepts(st, ev) {
		return st, nil
	}

	switch e := ev.(type) {
	case Restored:
		return m.restore(st, e)
	case MapReady:
		return m.mapReady(st, e)
	case GeolocationFailed:
		st.Mode = ModeMapUnavailable
		return st, []Effect{Alert{Message: geolocationAlert, Err: e.Err}}
	case MapClicked:
		pos := e.Position
		st.Mode = ModeFormOpen
		st.Pending = &pos
		return st, []Effect{ShowForm{Position: pos, Kind: st.FormKind}}
	case TypeChanged:
		if _, err := domain.ParseKind(string(e.Kind)); err != nil {
			return st, []Effect{Alert{Message: err.Error(), Err: err}}
		}
		st.FormKind = e.Kind
		return st, []Effect{ToggleFields{Kind: e.Kind}}
	case FormSubmitted:
		return m.submit(st, e)
	case FormCancelled:
		st.Mode = ModeIdle
		st.Pending = nil
		return st, []Effect{HideForm{}}
	case EntryClicked:
		return m.entryClicked(st, e)
	}
	return st, nil
}

func (m *Machine) restore(st State, e Restored) (State, []Effect) {
	st.Restored = true
	workouts := slices.Clone(st.Workouts)
	seen := make(map[string]struct{}, len(workouts)+len(e.Workouts))
	for _, w := range workouts {
		seen[w.ID] = struct{}{}
	}
	var effects []Effect
	for _, w := range e.Workouts {
		if _, dup := seen[w.ID]; dup {
			continue
		}
		seen[w.ID] = struct{}{}
		workouts = append(workouts, w)
		effects = append(effects, RenderEntry{Workout: w})
		if st.MapReady {
			effects = append(effects, PlaceMarker{Workout: w})
		}
	}
	st.Workouts = workouts
	return st, effects
}

func (m *Machine) mapReady(st State, e MapReady) (State, []Effect) {
	if err := e.Center.Validate(); err != nil {
		st.Mode = ModeMapUnavailable
		return st, []Effect{Alert{Message: geolocationAlert, Err: fmt.Errorf("%w: map center: %v", geolocation.ErrUnavailable, err)}}
	}
	st.Mode = ModeIdle
	st.MapReady = true
	effects := []Effect{InitMap{Center: e.Center, Zoom: m.zoom}}
	for _, w := range st.Workouts {
		effects = append(effects, PlaceMarker{Workout: w})
	}
	return st, effects
}

func (m *Machine) submit(st State, e FormSubmitted) (State, []Effect) {
	form := e.Form
	if form.Type == "" {
		form.Type = string(st.FormKind)
	}
	w, err := m.factory.FromForm(form, *st.Pending)
	if err != nil {
		return st, []Effect{Alert{Message: err.Error(), Err: err}}
	}

	st.Workouts = append(slices.Clone(st.Workouts), w)
	st.Mode = ModeIdle
	st.Pending = nil
	return st, []Effect{
		PlaceMarker{Workout: w},
		RenderEntry{Workout: w},
		Save{Workouts: slices.Clone(st.Workouts)},
		HideForm{},
	}
}

func (m *Machine) entryClicked(st State, e EntryClicked) (State, []Effect) {
	w, _ := st.Find(e.ID)
	var effects []Effect
	if st.MapReady {
		effects = append(effects, CenterOn{Position: w.Position, Zoom: m.zoom})
	}
	if !e.Delete {
		return st, effects
	}

	st.Workouts = slices.DeleteFunc(slices.Clone(st.Workouts), func(x domain.Workout) bool { return x.ID == e.ID })
	effects = append(effects, RemoveEntry{ID: e.ID})
	if st.MapReady {
		effects = append(effects, RemoveMarker{WorkoutID: e.ID})
	}
	return st, append(effects, Save{Workouts: slices.Clone(st.Workouts)})
}
