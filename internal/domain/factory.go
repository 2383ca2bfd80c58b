package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidInput is matched by every validation failure returned from the factory.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError names the field and the constraint it broke.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return e.Constraint
}

// Is lets errors.Is(err, ErrInvalidInput) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Clock returns the current time.
type Clock func() time.Time

// IDGenerator returns a fresh workout identifier.
type IDGenerator func() string

// Factory validates raw input and builds Workout values.
type Factory struct {
	now   Clock
	newID IDGenerator
}

// FactoryOption customises a Factory.
type FactoryOption func(*Factory)

// WithClock overrides the time source used for CreatedAt.
func WithClock(clock Clock) FactoryOption {
	return func(f *Factory) {
		f.now = clock
	}
}

// WithIDGenerator overrides the identifier source.
func WithIDGenerator(gen IDGenerator) FactoryOption {
	return func(f *Factory) {
		f.newID = gen
	}
}

// NewFactory constructs a Factory using wall-clock time and random UUIDs unless overridden.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create validates the input and returns a workout of the requested kind.
// extra is the cadence for runs and the elevation gain for rides.
func (f *Factory) Create(kind Kind, pos Position, distanceKm, durationMin, extra float64) (Workout, error) {
	return build(f.newID(), f.now(), kind, pos, distanceKm, durationMin, extra)
}

// FormInput is the raw text of the entry form.
type FormInput struct {
	Type      string
	Distance  string
	Duration  string
	Cadence   string
	Elevation string
}

// FromForm coerces the form text to numbers and calls Create with the field matching the type.
func (f *Factory) FromForm(in FormInput, pos Position) (Workout, error) {
	kind, err := ParseKind(in.Type)
	if err != nil {
		return Workout{}, err
	}
	extra := in.Elevation
	if kind == KindRunning {
		extra = in.Cadence
	}
	return f.Create(kind, pos, ParseFormNumber(in.Distance), ParseFormNumber(in.Duration), ParseFormNumber(extra))
}

// StoredFields are the base fields a persisted workout carries.
type StoredFields struct {
	ID          string
	CreatedAt   time.Time
	Position    Position
	DistanceKm  float64
	DurationMin float64
	Kind        Kind
	Extra       float64
}

// Restore rebuilds a persisted workout, re-validating it and recomputing every derived field.
func Restore(s StoredFields) (Workout, error) {
	if strings.TrimSpace(s.ID) == "" {
		return Workout{}, &ValidationError{Field: "id", Constraint: "id is required"}
	}
	if s.CreatedAt.IsZero() {
		return Workout{}, &ValidationError{Field: "createdAt", Constraint: "createdAt is required"}
	}
	return build(s.ID, s.CreatedAt, s.Kind, s.Position, s.DistanceKm, s.DurationMin, s.Extra)
}

// ParseFormNumber converts form text the way a numeric coercion would: blank is 0 and
// anything unparsable is NaN, so both are caught by validation rather than here.
func ParseFormNumber(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return v
		}
		return math.NaN()
	}
	return v
}

func build(id string, createdAt time.Time, kind Kind, pos Position, distanceKm, durationMin, extra float64) (Workout, error) {
	if err := validatePosition(pos); err != nil {
		return Workout{}, err
	}
	if err := positive("distance", distanceKm); err != nil {
		return Workout{}, err
	}
	if err := positive("duration", durationMin); err != nil {
		return Workout{}, err
	}

	w := Workout{
		ID:          id,
		CreatedAt:   createdAt,
		Position:    pos,
		DistanceKm:  distanceKm,
		DurationMin: durationMin,
		Kind:        kind,
	}

	switch kind {
	case KindRunning:
		if err := positive("cadence", extra); err != nil {
			return Workout{}, err
		}
		if extra != math.Trunc(extra) || extra > math.MaxInt32 {
			return Workout{}, &ValidationError{Field: "cadence", Constraint: "cadence must be a whole number of steps per minute"}
		}
		w.Running = &RunningMetrics{
			CadenceSpm:   int(extra),
			PaceMinPerKm: Pace(distanceKm, durationMin),
		}
	case KindCycling:
		if !isFinite(extra) || extra < 0 {
			return Workout{}, &ValidationError{Field: "elevation", Constraint: "elevation must be a non-negative number"}
		}
		w.Cycling = &CyclingMetrics{
			ElevationGainM: extra,
			SpeedKmPerH:    Speed(distanceKm, durationMin),
		}
	default:
		return Workout{}, &ValidationError{Field: "type", Constraint: "type must be running or cycling"}
	}

	w.Description = Describe(kind, createdAt)
	return w, nil
}

func positive(field string, v float64) error {
	if !isFinite(v) || v <= 0 {
		return &ValidationError{Field: field, Constraint: field + " must be a positive number"}
	}
	return nil
}

// Validate reports whether p is a finite coordinate pair within range.
func (p Position) Validate() error {
	return validatePosition(p)
}

func validatePosition(p Position) error {
	if !isFinite(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return &ValidationError{Field: "position", Constraint: "latitude must be between -90 and 90"}
	}
	if !isFinite(p.Lng) || p.Lng < -180 || p.Lng > 180 {
		return &ValidationError{Field: "position", Constraint: "longitude must be between -180 and 180"}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
