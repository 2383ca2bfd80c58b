package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"example.com/workoutmap/internal/config"
)

func TestOpenStoreDrivers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	redisServer := miniredis.RunT(t)

	cases := []config.Config{
		{StorageDriver: config.DriverMemory},
		{StorageDriver: config.DriverFile, FileDir: filepath.Join(dir, "files")},
		{StorageDriver: config.DriverSQLite, SQLitePath: filepath.Join(dir, "db", "w.db")},
		{StorageDriver: config.DriverRedis, RedisAddr: redisServer.Addr(), RedisPrefix: "t:"},
	}

	for _, cfg := range cases {
		t.Run(cfg.StorageDriver, func(t *testing.T) {
			store, closeFn, err := OpenStore(ctx, cfg)
			require.NoError(t, err)
			t.Cleanup(closeFn)

			adapter := NewAdapter(store, "workout")
			workouts := sampleWorkouts(t)
			require.NoError(t, adapter.Save(ctx, workouts))
			require.Len(t, adapter.Load(ctx), len(workouts))
		})
	}
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, closeFn, err := OpenStore(context.Background(), config.Config{StorageDriver: "tape"})
	require.Error(t, err)
	require.NotNil(t, closeFn)
}
