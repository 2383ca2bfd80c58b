// Package observability owns the prometheus collectors exported on /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Load outcomes reported by RecordLoad.
const (
	LoadOK         = "ok"
	LoadEmpty      = "empty"
	LoadUnreadable = "unreadable"
)

var (
	workoutsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "session",
		Name:      "workouts_recorded_total",
		Help:      "Number of workouts accepted from the entry form, by kind.",
	}, []string{"kind"})

	workoutsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "session",
		Name:      "workouts_deleted_total",
		Help:      "Number of workouts removed from the list.",
	})

	validationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "session",
		Name:      "validation_failures_total",
		Help:      "Number of rejected form submissions, by offending field.",
	}, []string{"field"})

	sessionWorkouts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workoutmap",
		Subsystem: "session",
		Name:      "workouts",
		Help:      "Workouts currently held by the session.",
	})

	storageWrites = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "storage",
		Name:      "writes_total",
		Help:      "Number of successful collection writes.",
	})

	storageWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "storage",
		Name:      "write_failures_total",
		Help:      "Number of collection writes that failed.",
	})

	storageLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "storage",
		Name:      "loads_total",
		Help:      "Collection loads grouped by outcome (ok, empty, unreadable).",
	}, []string{"outcome"})

	recordsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workoutmap",
		Subsystem: "storage",
		Name:      "records_skipped_total",
		Help:      "Persisted records dropped on load because they failed validation or repeated an id.",
	})
)

func init() {
	prometheus.MustRegister(
		workoutsRecorded,
		workoutsDeleted,
		validationFailures,
		sessionWorkouts,
		storageWrites,
		storageWriteFailures,
		storageLoads,
		recordsSkipped,
	)
}

// RecordWorkout counts an accepted workout.
func RecordWorkout(kind string) {
	workoutsRecorded.WithLabelValues(kind).Inc()
}

// RecordDelete counts a removed workout.
func RecordDelete() {
	workoutsDeleted.Inc()
}

// RecordValidationFailure counts a rejected submission.
func RecordValidationFailure(field string) {
	validationFailures.WithLabelValues(field).Inc()
}

// SetSessionWorkouts publishes the size of the in-memory collection.
func SetSessionWorkouts(n int) {
	sessionWorkouts.Set(float64(n))
}

// RecordStorageWrite counts a save attempt.
func RecordStorageWrite(err error) {
	if err != nil {
		storageWriteFailures.Inc()
		return
	}
	storageWrites.Inc()
}

// RecordLoad counts a load by outcome.
func RecordLoad(outcome string) {
	storageLoads.WithLabelValues(outcome).Inc()
}

// RecordSkipped counts persisted records dropped during load.
func RecordSkipped(n int) {
	if n <= 0 {
		return
	}
	recordsSkipped.Add(float64(n))
}
