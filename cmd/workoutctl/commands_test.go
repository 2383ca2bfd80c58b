package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/workoutmap/internal/config"
	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/persistence"
	"example.com/workoutmap/internal/persistence/memory"
)

func run(t *testing.T, store *memory.Store, args ...string) (string, error) {
	t.Helper()
	open := func(context.Context) (persistence.Store, func(), config.Config, error) {
		return store, func() {}, config.Config{StorageKey: "workout"}, nil
	}
	var out bytes.Buffer
	cmd := newRootCmd(open, &out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAddListExportDelete(t *testing.T) {
	store := memory.NewStore()

	out, err := run(t, store, "add", "--type", "running", "--lat", "34", "--lng=-23", "-d", "15", "-m", "23", "--cadence", "30")
	require.NoError(t, err)
	require.Contains(t, out, "added ")

	_, err = run(t, store, "add", "-t", "cycling", "--lat", "34", "--lng=-22", "-d", "10", "-m", "22", "--elevation", "4")
	require.NoError(t, err)

	out, err = run(t, store, "list")
	require.NoError(t, err)
	require.Contains(t, out, "DESCRIPTION")
	require.Contains(t, out, "Running ")
	require.Contains(t, out, "Cycling ")
	require.Contains(t, out, "27.3")

	out, err = run(t, store, "export")
	require.NoError(t, err)
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	require.EqualValues(t, persistence.SchemaVersion, records[0]["version"])

	id, ok := records[0]["id"].(string)
	require.True(t, ok)
	out, err = run(t, store, "delete", id)
	require.NoError(t, err)
	require.Contains(t, out, "deleted "+id)

	workouts := persistence.NewAdapter(store, "workout").Load(context.Background())
	require.Len(t, workouts, 1)
	require.Equal(t, domain.KindCycling, workouts[0].Kind)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	store := memory.NewStore()

	_, err := run(t, store, "add", "--type", "running", "--distance=-5", "-m", "23", "--cadence", "30")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.Zero(t, store.Writes())
}

func TestDeleteUnknownID(t *testing.T) {
	_, err := run(t, memory.NewStore(), "delete", "nope")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestKeyOverride(t *testing.T) {
	store := memory.NewStore()

	_, err := run(t, store, "--key", "other", "add", "-d", "5", "-m", "25", "--cadence", "170")
	require.NoError(t, err)

	require.Empty(t, persistence.NewAdapter(store, "workout").Load(context.Background()))
	require.Len(t, persistence.NewAdapter(store, "other").Load(context.Background()), 1)
}

func TestEditsAbortWhenStoreUnreadable(t *testing.T) {
	store := memory.NewStore()
	_, err := run(t, store, "add", "-d", "5", "-m", "25", "--cadence", "170")
	require.NoError(t, err)
	id := persistence.NewAdapter(store, "workout").Load(context.Background())[0].ID
	writes := store.Writes()

	down := errors.New("connection refused")
	store.FailReads(down)

	_, err = run(t, store, "add", "-d", "6", "-m", "30", "--cadence", "165")
	require.ErrorIs(t, err, persistence.ErrStorageUnreadable)
	require.ErrorIs(t, err, down)

	_, err = run(t, store, "delete", id)
	require.ErrorIs(t, err, down)
	require.Equal(t, writes, store.Writes())

	store.FailReads(nil)
	require.Len(t, persistence.NewAdapter(store, "workout").Load(context.Background()), 1)
}
