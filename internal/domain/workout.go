// Package domain defines the workout record and the factory that validates and builds it.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Kind discriminates the two workout variants.
type Kind string

const (
	// KindRunning is the pace-based variant.
	KindRunning Kind = "running"
	// KindCycling is the speed-based variant.
	KindCycling Kind = "cycling"
)

// ParseKind maps the form's type toggle value onto a Kind.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindRunning:
		return KindRunning, nil
	case KindCycling:
		return KindCycling, nil
	default:
		return "", &ValidationError{Field: "type", Constraint: "type must be running or cycling"}
	}
}

// Title returns the capitalised kind, e.g. "Running".
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Icon is the glyph shown next to the kind on the map and in the list.
func (k Kind) Icon() string {
	if k == KindRunning {
		return "🏃"
	}
	return "🚴"
}

// Position is a latitude/longitude pair in degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Position) String() string {
	return fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lng)
}

// RunningMetrics carries the pace-based payload.
type RunningMetrics struct {
	CadenceSpm   int
	PaceMinPerKm float64
}

// CyclingMetrics carries the speed-based payload.
type CyclingMetrics struct {
	ElevationGainM float64
	SpeedKmPerH    float64
}

// Workout is one logged activity. Exactly one of Running or Cycling is set, matching Kind.
// Values are built by Factory and never mutated afterwards.
type Workout struct {
	ID          string
	CreatedAt   time.Time
	Position    Position
	DistanceKm  float64
	DurationMin float64
	Kind        Kind
	Description string
	Running     *RunningMetrics
	Cycling     *CyclingMetrics
}

// Metric is the pace (min/km) for runs and the speed (km/h) for rides.
func (w Workout) Metric() float64 {
	switch w.Kind {
	case KindRunning:
		if w.Running != nil {
			return w.Running.PaceMinPerKm
		}
	case KindCycling:
		if w.Cycling != nil {
			return w.Cycling.SpeedKmPerH
		}
	}
	return 0
}

// Extra is the cadence (spm) for runs and the elevation gain (m) for rides.
func (w Workout) Extra() float64 {
	switch w.Kind {
	case KindRunning:
		if w.Running != nil {
			return float64(w.Running.CadenceSpm)
		}
	case KindCycling:
		if w.Cycling != nil {
			return w.Cycling.ElevationGainM
		}
	}
	return 0
}

// Cursor marks the last workout of a page.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// CursorAt returns the cursor that resumes after w.
func CursorAt(w Workout) *Cursor {
	return &Cursor{CreatedAt: w.CreatedAt, ID: w.ID}
}

// Marks reports whether c was taken at w.
func (c Cursor) Marks(w Workout) bool {
	return c.ID == w.ID && c.CreatedAt.Equal(w.CreatedAt)
}

var months = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Describe formats "<Kind> <Month> <day>" from the creation time.
func Describe(kind Kind, createdAt time.Time) string {
	return fmt.Sprintf("%s %s %d", kind.Title(), months[createdAt.Month()-1], createdAt.Day())
}

// Pace is minutes per kilometre.
func Pace(distanceKm, durationMin float64) float64 {
	return durationMin / distanceKm
}

// Speed is kilometres per hour.
func Speed(distanceKm, durationMin float64) float64 {
	return distanceKm / (durationMin / 60)
}
