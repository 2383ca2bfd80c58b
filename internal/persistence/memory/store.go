// Package memory provides an in-process key-value store for local runs and tests.
package memory

import (
	"context"
	"sync"
)

// Store keeps values in a map guarded by a RWMutex.
type Store struct {
	mu       sync.RWMutex
	items    map[string]string
	writeErr error
	readErr  error
	writes   int
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{items: make(map[string]string)}
}

// SetItem implements persistence.Store.
func (s *Store) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return s.writeErr
	}
	s.items[key] = value
	s.writes++
	return nil
}

// GetItem implements persistence.Store.
func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.readErr != nil {
		return "", false, s.readErr
	}
	value, ok := s.items[key]
	return value, ok, nil
}

// FailWrites makes every subsequent SetItem return err; nil restores normal writes.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// FailReads makes every subsequent GetItem return err; nil restores normal reads.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// Writes reports how many SetItem calls succeeded.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
