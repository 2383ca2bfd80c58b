package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/workoutmap/internal/config"
	"example.com/workoutmap/internal/persistence/file"
	"example.com/workoutmap/internal/persistence/memory"
	"example.com/workoutmap/internal/persistence/postgres"
	"example.com/workoutmap/internal/persistence/redisstore"
	"example.com/workoutmap/internal/persistence/sqlite"
)

// OpenStore builds the Store selected by cfg.StorageDriver. The returned closer releases
// any connections and is never nil.
func OpenStore(ctx context.Context, cfg config.Config) (Store, func(), error) {
	noop := func() {}

	switch cfg.StorageDriver {
	case config.DriverMemory:
		return memory.NewStore(), noop, nil

	case config.DriverFile:
		store, err := file.NewStore(cfg.FileDir)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	case config.DriverRedis:
		client := redisstore.Connect(cfg.RedisAddr, cfg.RedisPassword)
		store := redisstore.NewStore(client, cfg.RedisPrefix)
		if err := store.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		return store, func() { _ = client.Close() }, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, noop, fmt.Errorf("postgres: %w", err)
		}
		store := postgres.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("postgres schema: %w", err)
		}
		return store, pool.Close, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, fmt.Errorf("sqlite %s: %w", cfg.SQLitePath, err)
		}
		return store, func() { _ = store.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
