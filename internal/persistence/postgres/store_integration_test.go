//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/persistence"
	"example.com/workoutmap/internal/persistence/postgres"
)

func TestStorePersistsCollectionAcrossPools(t *testing.T) {
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("fitness"),
		postgrescontainer.WithUsername("platform"),
		postgrescontainer.WithPassword("platform"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	store := postgres.NewStore(pool)
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.EnsureSchema(ctx))

	_, ok, err := store.GetItem(ctx, "workout")
	require.NoError(t, err)
	require.False(t, ok)

	factory := domain.NewFactory()
	run, err := factory.Create(domain.KindRunning, domain.Position{Lat: 34, Lng: -23}, 15, 23, 30)
	require.NoError(t, err)

	adapter := persistence.NewAdapter(store, "workout")
	require.NoError(t, adapter.Save(ctx, []domain.Workout{run}))
	require.NoError(t, adapter.Save(ctx, []domain.Workout{run}))

	other, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { other.Close() })

	loaded := persistence.NewAdapter(postgres.NewStore(other), "workout").Load(ctx)
	require.Len(t, loaded, 1)
	require.Equal(t, run.ID, loaded[0].ID)
	require.Equal(t, run.Running.PaceMinPerKm, loaded[0].Running.PaceMinPerKm)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
