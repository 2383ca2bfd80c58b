package session

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/listview"
	"example.com/workoutmap/internal/mapview"
	"example.com/workoutmap/internal/observability"
)

const saveWarning = "Your workouts could not be saved. They are kept for this session only."

// Saver persists the whole collection. *persistence.Adapter satisfies it.
type Saver interface {
	Save(ctx context.Context, workouts []domain.Workout) error
}

// Level grades a Notice.
type Level string

const (
	// LevelAlert reports a rejected action.
	LevelAlert Level = "alert"
	// LevelWarning reports an action that took effect but was not persisted.
	LevelWarning Level = "warning"
)

// Notice is a message meant for the user.
type Notice struct {
	Level   Level
	Message string
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// LogNotifier writes notices to a logger.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(notice Notice) {
	n.Logger.Info().Str("level", string(notice.Level)).Msg(notice.Message)
}

// FormView is what the entry form currently shows.
type FormView struct {
	Visible       bool             `json:"visible"`
	Kind          domain.Kind      `json:"kind"`
	Position      *domain.Position `json:"position,omitempty"`
	ShowCadence   bool             `json:"show_cadence"`
	ShowElevation bool             `json:"show_elevation"`
	// Cleared counts how many times the fields were blanked.
	Cleared int `json:"cleared"`
}

// View summarises the session for readers outside the loop.
type View struct {
	Mode     Mode     `json:"mode"`
	MapReady bool     `json:"map_ready"`
	Form     FormView `json:"form"`
	Workouts int      `json:"workouts"`
}

// Outcome reports what handling one event did.
type Outcome struct {
	View     View
	Alerts   []string
	Warnings []string
	// Rejected is the validation error behind an alert, if any.
	Rejected error
	// Created is the workout a successful submission added.
	Created *domain.Workout
	Ignored bool
}

// Option configures optional behaviour for the Controller.
type Option func(*Controller)

// WithLogger overrides the controller logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithNotifier overrides where alerts and warnings are sent.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// Controller owns the session state and applies the machine's effects to the
// map and list presenters and the persistence adapter. It is not safe for concurrent use.
type Controller struct {
	machine  *Machine
	state    State
	maps     *mapview.Presenter
	list     *listview.Presenter
	saver    Saver
	notifier Notifier
	logger   zerolog.Logger
	form     FormView
}

// NewController constructs a Controller in the machine's initial state.
func NewController(machine *Machine, maps *mapview.Presenter, list *listview.Presenter, saver Saver, opts ...Option) *Controller {
	c := &Controller{
		machine: machine,
		state:   machine.Initial(),
		maps:    maps,
		list:    list,
		saver:   saver,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = LogNotifier{Logger: c.logger}
	}
	c.form = FormView{Kind: c.state.FormKind, ShowCadence: true}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// View summarises the current state.
func (c *Controller) View() View {
	return View{
		Mode:     c.state.Mode,
		MapReady: c.state.MapReady,
		Form:     c.form,
		Workouts: len(c.state.Workouts),
	}
}

// Handle steps the machine with ev and applies the resulting effects.
func (c *Controller) Handle(ctx context.Context, ev Event) Outcome {
	if lc, ok := ev.(ListClicked); ok {
		sel, found := c.list.FindClicked(lc.Click)
		if !found {
			return Outcome{View: c.View(), Ignored: true}
		}
		ev = EntryClicked{ID: sel.ID, Delete: sel.Delete}
	}

	if !c.machine.Accepts(c.state, ev) {
		c.logger.Debug().Str("mode", string(c.state.Mode)).Type("event", ev).Msg("event ignored")
		return Outcome{View: c.View(), Ignored: true}
	}

	before := len(c.state.Workouts)
	next, effects := c.machine.Step(c.state, ev)
	c.state = next

	var out Outcome
	for _, eff := range effects {
		c.apply(ctx, eff, &out)
	}

	switch e := ev.(type) {
	case FormSubmitted:
		if len(next.Workouts) > before {
			w := next.Workouts[len(next.Workouts)-1]
			out.Created = &w
			observability.RecordWorkout(string(w.Kind))
			c.logger.Info().Str("workout_id", w.ID).Str("kind", string(w.Kind)).Msg("workout recorded")
		}
	case EntryClicked:
		if e.Delete {
			observability.RecordDelete()
			c.logger.Info().Str("workout_id", e.ID).Msg("workout deleted")
		}
	}
	observability.SetSessionWorkouts(len(next.Workouts))

	out.View = c.View()
	return out
}

func (c *Controller) apply(ctx context.Context, eff Effect, out *Outcome) {
	switch e := eff.(type) {
	case InitMap:
		if err := c.maps.Initialize(e.Center, e.Zoom); err != nil {
			c.logger.Error().Err(err).Msg("map initialization failed")
		}
	case PlaceMarker:
		c.mapOp("place marker", c.maps.PlaceMarker(e.Workout))
	case RemoveMarker:
		c.maps.RemoveMarkers(e.WorkoutID)
	case CenterOn:
		c.mapOp("center map", c.maps.CenterOn(e.Position, e.Zoom))
	case RenderEntry:
		c.list.Render(e.Workout)
	case RemoveEntry:
		c.list.Remove(e.ID)
	case Save:
		if err := c.saver.Save(ctx, e.Workouts); err != nil {
			out.Warnings = append(out.Warnings, saveWarning)
			c.notifier.Notify(Notice{Level: LevelWarning, Message: saveWarning})
		}
	case ShowForm:
		pos := e.Position
		c.form.Visible = true
		c.form.Position = &pos
		c.setKind(e.Kind)
	case HideForm:
		c.form.Visible = false
		c.form.Position = nil
		c.form.Cleared++
	case ToggleFields:
		c.setKind(e.Kind)
	case Alert:
		out.Alerts = append(out.Alerts, e.Message)
		var verr *domain.ValidationError
		if errors.As(e.Err, &verr) {
			out.Rejected = e.Err
			observability.RecordValidationFailure(verr.Field)
		}
		c.notifier.Notify(Notice{Level: LevelAlert, Message: e.Message})
	}
}

func (c *Controller) setKind(kind domain.Kind) {
	c.form.Kind = kind
	c.form.ShowCadence = kind == domain.KindRunning
	c.form.ShowElevation = kind == domain.KindCycling
}

func (c *Controller) mapOp(op string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, mapview.ErrNotInitialized) {
		c.logger.Debug().Str("op", op).Msg("map not ready, skipping")
		return
	}
	c.logger.Warn().Err(err).Str("op", op).Msg("map operation failed")
}
