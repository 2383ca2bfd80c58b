package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordStorageWriteSplitsOutcomes(t *testing.T) {
	beforeOK := testutil.ToFloat64(storageWrites)
	beforeFail := testutil.ToFloat64(storageWriteFailures)

	RecordStorageWrite(nil)
	RecordStorageWrite(errors.New("quota exceeded"))
	RecordStorageWrite(errors.New("disabled"))

	require.Equal(t, beforeOK+1, testutil.ToFloat64(storageWrites))
	require.Equal(t, beforeFail+2, testutil.ToFloat64(storageWriteFailures))
}

func TestRecordWorkoutByKind(t *testing.T) {
	before := testutil.ToFloat64(workoutsRecorded.WithLabelValues("cycling"))
	RecordWorkout("cycling")
	require.Equal(t, before+1, testutil.ToFloat64(workoutsRecorded.WithLabelValues("cycling")))
}

func TestRecordSkippedIgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(recordsSkipped)
	RecordSkipped(0)
	RecordSkipped(-3)
	require.Equal(t, before, testutil.ToFloat64(recordsSkipped))
	RecordSkipped(2)
	require.Equal(t, before+2, testutil.ToFloat64(recordsSkipped))
}

func TestSetSessionWorkouts(t *testing.T) {
	SetSessionWorkouts(7)
	require.Equal(t, 7.0, testutil.ToFloat64(sessionWorkouts))
}
