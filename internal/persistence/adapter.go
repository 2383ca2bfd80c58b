package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/observability"
)

// Option configures optional behaviour for the Adapter.
type Option func(*Adapter)

// WithLogger overrides the logger used to report unreadable data and write failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// ErrUnconfirmedRead is wrapped by Save while the last read of the slot failed, so a
// collection that could not be read is never overwritten.
var ErrUnconfirmedRead = errors.New("stored workouts were not read")

// Adapter reads and writes the whole workout collection under a single key.
type Adapter struct {
	store  Store
	key    string
	logger zerolog.Logger

	mu      sync.Mutex
	readErr error
	newer   []json.RawMessage
}

// NewAdapter constructs an Adapter over store. An empty key falls back to DefaultKey.
func NewAdapter(store Store, key string, opts ...Option) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	a := &Adapter{store: store, key: key, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key reports the slot the collection is stored under.
func (a *Adapter) Key() string {
	return a.key
}

// Save replaces the stored collection. Records written by a newer schema that were seen
// on the last read are written back unchanged. Failures wrap ErrStorageWriteFailed.
func (a *Adapter) Save(ctx context.Context, workouts []domain.Workout) error {
	err := a.save(ctx, workouts)
	observability.RecordStorageWrite(err)
	if err != nil {
		a.logger.Warn().Err(err).Str("key", a.key).Int("workouts", len(workouts)).Msg("save failed")
		return err
	}
	return nil
}

func (a *Adapter) save(ctx context.Context, workouts []domain.Workout) error {
	a.mu.Lock()
	readErr, newer := a.readErr, a.newer
	a.mu.Unlock()
	if readErr != nil {
		return fmt.Errorf("%w: %w: %v", ErrStorageWriteFailed, ErrUnconfirmedRead, readErr)
	}

	body, err := encode(workouts, newer)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStorageWriteFailed, err)
	}
	if err := a.store.SetItem(ctx, a.key, body); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWriteFailed, err)
	}
	return nil
}

// Load returns the stored collection in insertion order. It never fails: absent or
// unreadable data yields an empty slice. After a backend read error Save refuses to
// write until a later Load or Read succeeds.
func (a *Adapter) Load(ctx context.Context) []domain.Workout {
	workouts, err := a.Read(ctx)
	if err != nil {
		return []domain.Workout{}
	}
	return workouts
}

// Read is Load for callers that must not act on a collection they could not read. Only
// backend errors are returned; corrupt data still reads as empty.
func (a *Adapter) Read(ctx context.Context) ([]domain.Workout, error) {
	raw, ok, err := a.store.GetItem(ctx, a.key)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrStorageUnreadable, err)
		a.remember(err, nil)
		a.unreadable(err)
		return nil, err
	}
	if !ok {
		a.remember(nil, nil)
		observability.RecordLoad(observability.LoadEmpty)
		return []domain.Workout{}, nil
	}

	decoded, err := Decode(raw)
	if err != nil {
		a.remember(nil, nil)
		a.unreadable(err)
		return []domain.Workout{}, nil
	}
	a.remember(nil, decoded.Newer)
	if decoded.Skipped > 0 {
		observability.RecordSkipped(decoded.Skipped)
		a.logger.Warn().Int("skipped", decoded.Skipped).Str("key", a.key).Msg("dropped unreadable workout records")
	}
	if len(decoded.Newer) > 0 {
		a.logger.Warn().Int("records", len(decoded.Newer)).Str("key", a.key).Msg("keeping records from a newer schema version")
	}

	if len(decoded.Workouts) == 0 {
		observability.RecordLoad(observability.LoadEmpty)
	} else {
		observability.RecordLoad(observability.LoadOK)
	}
	return decoded.Workouts, nil
}

func (a *Adapter) remember(readErr error, newer []json.RawMessage) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.readErr = readErr
	a.newer = newer
}

func (a *Adapter) unreadable(err error) {
	observability.RecordLoad(observability.LoadUnreadable)
	a.logger.Warn().Err(err).Str("key", a.key).Msg("treating stored workouts as empty")
}
