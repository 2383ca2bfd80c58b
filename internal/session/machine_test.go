package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/geolocation"
)

var createdAt = time.Date(2026, time.October, 16, 7, 30, 0, 0, time.UTC)

func newTestFactory() *domain.Factory {
	n := 0
	return domain.NewFactory(
		domain.WithClock(func() time.Time { return createdAt }),
		domain.WithIDGenerator(func() string { n++; return fmt.Sprintf("w-%d", n) }),
	)
}

func idleState(t *testing.T, m *Machine) State {
	t.Helper()
	st, _ := m.Step(m.Initial(), Restored{})
	st, _ = m.Step(st, MapReady{Center: domain.Position{Lat: 34, Lng: -23}})
	require.Equal(t, ModeIdle, st.Mode)
	return st
}

func openForm(t *testing.T, m *Machine, st State, pos domain.Position) State {
	t.Helper()
	st, effects := m.Step(st, MapClicked{Position: pos})
	require.Equal(t, ModeFormOpen, st.Mode)
	require.Equal(t, []Effect{ShowForm{Position: pos, Kind: st.FormKind}}, effects)
	return st
}

func TestInitialState(t *testing.T) {
	m := NewMachine(newTestFactory(), 13)
	st := m.Initial()

	require.Equal(t, ModeAwaitingMap, st.Mode)
	require.Equal(t, domain.KindRunning, st.FormKind)
	require.Empty(t, st.Workouts)
}

func TestRestoreBeforeMapRendersEntriesThenMarkers(t *testing.T) {
	m := NewMachine(newTestFactory(), 13)
	f := newTestFactory()
	run, err := f.Create(domain.KindRunning, domain.Position{Lat: 1, Lng: 2}, 5, 25, 170)
	require.NoError(t, err)

	st, effects := m.Step(m.Initial(), Restored{Workouts: []domain.Workout{run, run}})
	require.Equal(t, ModeAwaitingMap, st.Mode)
	require.Equal(t, []Effect{RenderEntry{Workout: run}}, effects)
	require.Len(t, st.Workouts, 1)

	again, effects := m.Step(st, Restored{Workouts: []domain.Workout{run}})
	require.Nil(t, effects)
	require.Equal(t, st, again)

	center := domain.Position{Lat: 34, Lng: -23}
	st, effects = m.Step(st, MapReady{Center: center})
	require.Equal(t, ModeIdle, st.Mode)
	require.True(t, st.MapReady)
	require.Equal(t, []Effect{InitMap{Center: center, Zoom: 13}, PlaceMarker{Workout: run}}, effects)
}

func TestGeolocationFailureDisablesMap(t *testing.T) {
	m := NewMachine(newTestFactory(), 13)
	cause := errors.New("denied")

	st, effects := m.Step(m.Initial(), GeolocationFailed{Err: cause})
	require.Equal(t, ModeMapUnavailable, st.Mode)
	require.Equal(t, []Effect{Alert{Message: geolocationAlert, Err: cause}}, effects)

	_, effects = m.Step(st, MapClicked{Position: domain.Position{Lat: 1, Lng: 1}})
	require.Nil(t, effects)
	_, effects = m.Step(st, MapReady{Center: domain.Position{Lat: 1, Lng: 1}})
	require.Nil(t, effects)
}

func TestMapReadyWithInvalidCenter(t *testing.T) {
	m := NewMachine(newTestFactory(), 13)

	st, effects := m.Step(m.Initial(), MapReady{Center: domain.Position{Lat: 91}})
	require.Equal(t, ModeMapUnavailable, st.Mode)
	require.Len(t, effects, 1)
	alert, ok := effects[0].(Alert)
	require.True(t, ok)
	require.ErrorIs(t, alert.Err, geolocation.ErrUnavailable)
	require.NotErrorIs(t, alert.Err, domain.ErrInvalidInput)
}

func TestMapClickIgnoredBeforeMapReady(t *testing.T) {
	m := NewMachine(newTestFactory(), 13)

	st, effects := m.Step(m.Initial(), MapClicked{Position: domain.Position{Lat: 1, Lng: 1}})
	require.Equal(t, ModeAwaitingMap, st.Mode)
	require.Nil(t, effects)
}

func TestSecondMapClickRecapturesPosition(t *testing.T) {
	m := NewMachine(newTestFactory(), 13)
	st := openForm(t, m, idleState(t, m), domain.Position{Lat: 1, Lng: 1})
	st = openForm(t, m, st, domain.Position{Lat: 2, Lng: 2})

	require.Equal(t, domain.Position{Lat: 2, Lng: 2}, *st.Pending)
}

func TestSubmitRunningWorkout(t *testing.T) {
	m := NewMachine(newTestFactory(), 13)
	pos := domain.Position{Lat: 34, Lng: -23}
	st := openForm(t, m, idleState(t, m), pos)

	next, effects := m.Step(st, FormSubmitted{Form: domain.FormInput{Type: "running", Distance: "15", Duration: "23", Cadence: "30"}})

	require.Equal(t, ModeIdle, next.Mode)
	require.Nil(t, next.Pending)
	require.Len(t, next.Workouts, 1)
	require.Empty(t, st.Workouts)

	w := next.Workouts[0]
	require.Equal(t, pos, w.Position)
	require.InDelta(t, 23.0/15.0, w.Metric(), 1e-12)
	require.InDelta(t, 1.5333, w.Metric(), 1e-4)
	require.Contains(t, w.Description, "October 16")

	require.Equal(t, []Effect{
		PlaceMarker{Workout: w},
		RenderEntry{Workout: w},
		Save{Workouts: []domain.Workout{w}},
		HideForm{},
	}, effects)
}

func TestSubmitCyclingWorkoutUsesToggle(t *testing.T) {
	m := NewMachine(newTestFactory(), 13)
	st := idleState(t, m)

	st, effects := m.Step(st, TypeChanged{Kind: domain.KindCycling})
	require.Equal(t, ModeIdle, st.Mode)
	require.Equal(t, []Effect{ToggleFields{Kind: domain.KindCycling}}, effects)

	st = openForm(t, m, st, domain.Position{Lat: 34, Lng: -23})
	st, _ = m.Step(st, FormSubmitted{Form: domain.FormInput{Distance: "10", Duration: "22", Elevation: "4"}})

	require.Len(t, st.Workouts, 1)
	require.Equal(t, domain.KindCycling, st.Workouts[0].Kind)
	require.InDelta(t, 27.27, st.Workouts[0].Metric(), 0.01)
}

func TestSubmitInvalidStaysOpen(t *testing.T) {
	m := NewMachine(newTestFactory(), 13)
	st := openForm(t, m, idleState(t, m), domain.Position{Lat: 34, Lng: -23})

	next, effects := m.Step(st, FormSubmitted{Form: domain.FormInput{Type: "running", Distance: "-5", Duration: "23", Cadence: "30"}})

	require.Equal(t, ModeFormOpen, next.Mode)
	require.Len(t, next.Workouts, len(st.Workouts))
	require.Len(t, effects, 1)
	alert, ok := effects[0].(Alert)
	require.True(t, ok)
	require.ErrorIs(t, alert.Err, domain.ErrInvalidInput)
	var verr *domain.ValidationError
	require.ErrorAs(t, alert.Err, &verr)
	require.Equal(t, "distance", verr.Field)
}

func TestSubmitIgnoredWhenFormClosed(t *testing.T) {
	m := NewMachine(newTestFactory(), 13)
	st := idleState(t, m)

	next, effects := m.Step(st, FormSubmitted{Form: domain.FormInput{Type: "running", Distance: "5", Duration: "20", Cadence: "160"}})
	require.Nil(t, effects)
	require.Equal(t, st, next)
}

func TestCancelHidesForm(t *testing.T) {
	m := NewMachine(newTestFactory(), 13)
	st := openForm(t, m, idleState(t, m), domain.Position{Lat: 1, Lng: 1})

	st, effects := m.Step(st, FormCancelled{})
	require.Equal(t, ModeIdle, st.Mode)
	require.Nil(t, st.Pending)
	require.Equal(t, []Effect{HideForm{}}, effects)
}

func TestTypeChangedRejectsUnknownKind(t *testing.T) {
	m := NewMachine(newTestFactory(), 13)
	st := idleState(t, m)

	next, effects := m.Step(st, TypeChanged{Kind: "swimming"})
	require.Equal(t, domain.KindRunning, next.FormKind)
	require.Len(t, effects, 1)
	require.IsType(t, Alert{}, effects[0])
}

func submitted(t *testing.T, m *Machine, st State, pos domain.Position) State {
	t.Helper()
	st = openForm(t, m, st, pos)
	st, _ = m.Step(st, FormSubmitted{Form: domain.FormInput{Type: "running", Distance: "5", Duration: "25", Cadence: "170"}})
	require.Equal(t, ModeIdle, st.Mode)
	return st
}

func TestEntryClickCentersOnStoredPosition(t *testing.T) {
	m := NewMachine(newTestFactory(), 13)
	st := submitted(t, m, idleState(t, m), domain.Position{Lat: 10, Lng: 20})
	st = submitted(t, m, st, domain.Position{Lat: 30, Lng: 40})

	next, effects := m.Step(st, EntryClicked{ID: "w-1"})
	require.Equal(t, st, next)
	require.Equal(t, []Effect{CenterOn{Position: domain.Position{Lat: 10, Lng: 20}, Zoom: 13}}, effects)

	_, effects = m.Step(st, EntryClicked{ID: "missing"})
	require.Nil(t, effects)
}

func TestEntryDeleteRemovesAndSaves(t *testing.T) {
	m := NewMachine(newTestFactory(), 13)
	st := submitted(t, m, idleState(t, m), domain.Position{Lat: 10, Lng: 20})
	st = submitted(t, m, st, domain.Position{Lat: 30, Lng: 40})
	remaining := st.Workouts[1]

	next, effects := m.Step(st, EntryClicked{ID: "w-1", Delete: true})
	require.Equal(t, []domain.Workout{remaining}, next.Workouts)
	require.Len(t, st.Workouts, 2)
	require.Equal(t, []Effect{
		CenterOn{Position: domain.Position{Lat: 10, Lng: 20}, Zoom: 13},
		RemoveEntry{ID: "w-1"},
		RemoveMarker{WorkoutID: "w-1"},
		Save{Workouts: []domain.Workout{remaining}},
	}, effects)
}

func TestEntryDeleteWithoutMap(t *testing.T) {
	m := NewMachine(newTestFactory(), 13)
	run, err := newTestFactory().Create(domain.KindRunning, domain.Position{Lat: 1, Lng: 2}, 5, 25, 170)
	require.NoError(t, err)

	st, _ := m.Step(m.Initial(), Restored{Workouts: []domain.Workout{run}})
	st, _ = m.Step(st, GeolocationFailed{Err: errors.New("denied")})

	next, effects := m.Step(st, EntryClicked{ID: run.ID, Delete: true})
	require.Empty(t, next.Workouts)
	require.Equal(t, []Effect{RemoveEntry{ID: run.ID}, Save{Workouts: []domain.Workout{}}}, effects)
}
