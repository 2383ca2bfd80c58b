// Package redisstore keeps the workout collection in Redis.
package redisstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Store issues SET/GET against a Redis client, namespacing keys with a prefix.
type Store struct {
	client redis.Cmdable
	prefix string
}

// Connect builds a client for addr; it does not dial until the first command.
func Connect(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

// NewStore wraps an existing client.
func NewStore(client redis.Cmdable, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// SetItem implements persistence.Store.
func (s *Store) SetItem(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

// GetItem implements persistence.Store.
func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
