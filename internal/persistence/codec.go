package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"example.com/workoutmap/internal/domain"
)

// SchemaVersion is written into every persisted record. Records without a version use the
// legacy layout (date/cords/distance/duration/type) and are read as version 0.
const SchemaVersion = 1

type recordV1 struct {
	Version        int         `json:"version"`
	ID             string      `json:"id"`
	CreatedAt      time.Time   `json:"createdAt"`
	Position       [2]float64  `json:"position"`
	DistanceKm     float64     `json:"distanceKm"`
	DurationMin    float64     `json:"durationMin"`
	Kind           domain.Kind `json:"kind"`
	CadenceSpm     *int        `json:"cadenceSpm,omitempty"`
	ElevationGainM *float64    `json:"elevationGainM,omitempty"`
	PaceMinPerKm   *float64    `json:"paceMinPerKm,omitempty"`
	SpeedKmPerH    *float64    `json:"speedKmPerH,omitempty"`
	Description    string      `json:"description,omitempty"`
}

// storedRecord accepts both the current and the legacy layout.
type storedRecord struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	Position       []float64 `json:"position"`
	DistanceKm     *float64  `json:"distanceKm"`
	DurationMin    *float64  `json:"durationMin"`
	Kind           string    `json:"kind"`
	CadenceSpm     *float64  `json:"cadenceSpm"`
	ElevationGainM *float64  `json:"elevationGainM"`

	Date      time.Time `json:"date"`
	Cords     []float64 `json:"cords"`
	Distance  *float64  `json:"distance"`
	Duration  *float64  `json:"duration"`
	Type      string    `json:"type"`
	Cadence   *float64  `json:"cadence"`
	Elevation *float64  `json:"elevation"`
}

// Decoded is the readable part of a stored collection.
type Decoded struct {
	Workouts []domain.Workout
	// Newer holds records written by a later schema version, verbatim.
	Newer []json.RawMessage
	// Skipped counts invalid records and repeated ids.
	Skipped int
}

// Encode renders the collection as a JSON array of versioned records.
func Encode(workouts []domain.Workout) (string, error) {
	return encode(workouts, nil)
}

// encode appends newer records after the workouts, unchanged.
func encode(workouts []domain.Workout, newer []json.RawMessage) (string, error) {
	out := make([]any, 0, len(workouts)+len(newer))
	for _, w := range workouts {
		rec := recordV1{
			Version:     SchemaVersion,
			ID:          w.ID,
			CreatedAt:   w.CreatedAt,
			Position:    [2]float64{w.Position.Lat, w.Position.Lng},
			DistanceKm:  w.DistanceKm,
			DurationMin: w.DurationMin,
			Kind:        w.Kind,
			Description: w.Description,
		}
		switch w.Kind {
		case domain.KindRunning:
			if w.Running == nil {
				return "", fmt.Errorf("workout %s: running metrics missing", w.ID)
			}
			cadence, pace := w.Running.CadenceSpm, w.Running.PaceMinPerKm
			rec.CadenceSpm, rec.PaceMinPerKm = &cadence, &pace
		case domain.KindCycling:
			if w.Cycling == nil {
				return "", fmt.Errorf("workout %s: cycling metrics missing", w.ID)
			}
			elevation, speed := w.Cycling.ElevationGainM, w.Cycling.SpeedKmPerH
			rec.ElevationGainM, rec.SpeedKmPerH = &elevation, &speed
		default:
			return "", fmt.Errorf("workout %s: unknown kind %q", w.ID, w.Kind)
		}
		out = append(out, rec)
	}
	for _, raw := range newer {
		out = append(out, raw)
	}

	body, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// errNewerVersion marks a record this build cannot read but must not discard.
var errNewerVersion = errors.New("record written by a newer schema version")

// Decode parses a stored collection. A document that is not a JSON array fails with
// ErrStorageUnreadable. Records from a newer schema are kept aside untouched; other
// records that cannot be restored are skipped and counted, as are repeated ids after
// their first occurrence.
func Decode(raw string) (Decoded, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrStorageUnreadable, err)
	}

	out := Decoded{Workouts: make([]domain.Workout, 0, len(elems))}
	seen := make(map[string]struct{}, len(elems))
	for _, elem := range elems {
		w, err := decodeRecord(elem)
		if errors.Is(err, errNewerVersion) {
			out.Newer = append(out.Newer, elem)
			continue
		}
		if err != nil {
			out.Skipped++
			continue
		}
		if _, dup := seen[w.ID]; dup {
			out.Skipped++
			continue
		}
		seen[w.ID] = struct{}{}
		out.Workouts = append(out.Workouts, w)
	}
	return out, nil
}

func decodeRecord(elem json.RawMessage) (domain.Workout, error) {
	var head struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(elem, &head); err != nil {
		return domain.Workout{}, err
	}
	version := 0
	if head.Version != nil {
		version = *head.Version
	}
	if version > SchemaVersion {
		return domain.Workout{}, fmt.Errorf("%w: %d", errNewerVersion, version)
	}

	var rec storedRecord
	if err := json.Unmarshal(elem, &rec); err != nil {
		return domain.Workout{}, err
	}

	var fields domain.StoredFields
	switch version {
	case 0:
		fields = domain.StoredFields{
			ID:          rec.ID,
			CreatedAt:   rec.Date,
			DistanceKm:  valueOrNaN(rec.Distance),
			DurationMin: valueOrNaN(rec.Duration),
			Kind:        domain.Kind(rec.Type),
		}
		pos, err := toPosition(rec.Cords)
		if err != nil {
			return domain.Workout{}, err
		}
		fields.Position = pos
		fields.Extra = pickExtra(fields.Kind, rec.Cadence, rec.Elevation)
	case SchemaVersion:
		fields = domain.StoredFields{
			ID:          rec.ID,
			CreatedAt:   rec.CreatedAt,
			DistanceKm:  valueOrNaN(rec.DistanceKm),
			DurationMin: valueOrNaN(rec.DurationMin),
			Kind:        domain.Kind(rec.Kind),
		}
		pos, err := toPosition(rec.Position)
		if err != nil {
			return domain.Workout{}, err
		}
		fields.Position = pos
		fields.Extra = pickExtra(fields.Kind, rec.CadenceSpm, rec.ElevationGainM)
	default:
		return domain.Workout{}, fmt.Errorf("unsupported record version %d", version)
	}

	return domain.Restore(fields)
}

func pickExtra(kind domain.Kind, cadence, elevation *float64) float64 {
	if kind == domain.KindRunning {
		return valueOrNaN(cadence)
	}
	return valueOrNaN(elevation)
}

func toPosition(pair []float64) (domain.Position, error) {
	if len(pair) != 2 {
		return domain.Position{}, fmt.Errorf("position needs 2 coordinates, got %d", len(pair))
	}
	return domain.Position{Lat: pair[0], Lng: pair[1]}, nil
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
