package session

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/geolocation"
)

// ErrStopped is returned by Dispatch once Run has returned.
var ErrStopped = errors.New("session stopped")

// Loader returns the persisted collection. *persistence.Adapter satisfies it.
type Loader interface {
	Load(ctx context.Context) []domain.Workout
}

// Snapshot is a read-only copy of the session published after every event.
type Snapshot struct {
	View     View
	Workouts []domain.Workout
}

type request struct {
	ctx   context.Context
	event Event
	reply chan Outcome
}

// Session serialises every event through one goroutine running the Controller.
type Session struct {
	ctrl     *Controller
	logger   zerolog.Logger
	requests chan request
	stopped  chan struct{}

	mu   sync.RWMutex
	snap Snapshot
}

// New wraps ctrl in a Session. Run must be started before Dispatch is called.
func New(ctrl *Controller, logger zerolog.Logger) *Session {
	s := &Session{
		ctrl:     ctrl,
		logger:   logger,
		requests: make(chan request),
		stopped:  make(chan struct{}),
	}
	s.publish()
	return s
}

// Run processes events until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.stopped)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-s.requests:
			out := s.ctrl.Handle(req.ctx, req.event)
			s.publish()
			req.reply <- out
		}
	}
}

// Dispatch hands ev to the loop and waits for its outcome.
func (s *Session) Dispatch(ctx context.Context, ev Event) (Outcome, error) {
	reply := make(chan Outcome, 1)
	select {
	case s.requests <- request{ctx: ctx, event: ev, reply: reply}:
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	case <-s.stopped:
		return Outcome{}, ErrStopped
	}

	select {
	case out := <-reply:
		return out, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Start restores the persisted collection, then locates the user in the background.
// The returned channel closes once the geolocation result has been handled.
func (s *Session) Start(ctx context.Context, loader Loader, locator geolocation.Locator) (<-chan struct{}, error) {
	if _, err := s.Dispatch(ctx, Restored{Workouts: loader.Load(ctx)}); err != nil {
		return nil, err
	}

	located := make(chan struct{})
	go func() {
		defer close(located)
		var ev Event
		pos, err := locator.Locate(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("geolocation failed, map disabled")
			ev = GeolocationFailed{Err: err}
		} else {
			ev = MapReady{Center: pos}
		}
		if _, err := s.Dispatch(ctx, ev); err != nil {
			s.logger.Debug().Err(err).Msg("geolocation result dropped")
		}
	}()
	return located, nil
}

// Snapshot returns the state published after the last handled event.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{View: s.snap.View, Workouts: slices.Clone(s.snap.Workouts)}
}

func (s *Session) publish() {
	snap := Snapshot{View: s.ctrl.View(), Workouts: slices.Clone(s.ctrl.State().Workouts)}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}
