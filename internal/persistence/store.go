// Package persistence serialises the workout collection to a key-value string store.
package persistence

import (
	"context"
	"errors"
)

var (
	// ErrStorageUnreadable marks stored data that is absent, corrupt or unparsable.
	// Load never returns it; it shows up in logs and metrics only.
	ErrStorageUnreadable = errors.New("stored workouts unreadable")
	// ErrStorageWriteFailed wraps any failure to persist the collection.
	ErrStorageWriteFailed = errors.New("storing workouts failed")
)

// Store is the key-value collaborator holding the serialised collection.
type Store interface {
	// SetItem replaces the value under key in one write.
	SetItem(ctx context.Context, key, value string) error
	// GetItem returns the value under key, or ok=false when nothing is stored.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
}

// DefaultKey is the slot the collection lives under unless configured otherwise.
const DefaultKey = "workout"
