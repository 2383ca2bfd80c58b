package persistence

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"example.com/workoutmap/internal/domain"
)

// ErrInvalidCursor is returned for page tokens that FormatCursor did not produce.
var ErrInvalidCursor = errors.New("invalid page cursor")

// FormatCursor renders a query-safe page token, "<unix nanos>.<workout id>" in unpadded
// URL base64. A nil cursor formats as the empty token.
func FormatCursor(c *domain.Cursor) string {
	if c == nil {
		return ""
	}
	raw := strconv.FormatInt(c.CreatedAt.UnixNano(), 10) + "." + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseCursor reverses FormatCursor. An empty token selects the first page.
func ParseCursor(token string) (*domain.Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	nanos, id, ok := strings.Cut(string(raw), ".")
	if !ok || id == "" {
		return nil, ErrInvalidCursor
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return &domain.Cursor{CreatedAt: time.Unix(0, n).UTC(), ID: id}, nil
}

// Page returns up to limit workouts after cursor in insertion order, and the cursor for
// the next page when more remain. A cursor that matches nothing yields an empty page.
func Page(workouts []domain.Workout, cursor *domain.Cursor, limit int) ([]domain.Workout, *domain.Cursor) {
	start := 0
	if cursor != nil {
		start = len(workouts)
		for i, w := range workouts {
			if cursor.Marks(w) {
				start = i + 1
				break
			}
		}
	}

	end := len(workouts)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	page := append([]domain.Workout(nil), workouts[start:end]...)

	if end == len(workouts) || len(page) == 0 {
		return page, nil
	}
	return page, domain.CursorAt(page[len(page)-1])
}
