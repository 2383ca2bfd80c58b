// Package geolocation resolves the user's current position for centring the map.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"example.com/workoutmap/internal/config"
	"example.com/workoutmap/internal/domain"
)

// ErrUnavailable is returned when no position can be obtained (denied, unsupported, failed).
var ErrUnavailable = errors.New("geolocation unavailable")

// Locator yields the current position once per call.
type Locator interface {
	Locate(ctx context.Context) (domain.Position, error)
}

// Static always reports the configured position.
type Static struct {
	Position domain.Position
}

// Locate implements Locator.
func (s Static) Locate(ctx context.Context) (domain.Position, error) {
	if err := ctx.Err(); err != nil {
		return domain.Position{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return s.Position, nil
}

// Unavailable always fails, like a browser with location access denied.
type Unavailable struct {
	Reason string
}

// Locate implements Locator.
func (u Unavailable) Locate(context.Context) (domain.Position, error) {
	reason := u.Reason
	if reason == "" {
		reason = "disabled"
	}
	return domain.Position{}, fmt.Errorf("%w: %s", ErrUnavailable, reason)
}

// IPLocator looks the caller up against an ip-api style endpoint that answers
// {"status":"success","lat":..,"lon":..}.
type IPLocator struct {
	client *resty.Client
	url    string
}

// NewIPLocator constructs an IPLocator with the given request timeout.
func NewIPLocator(url string, timeout time.Duration) *IPLocator {
	return &IPLocator{
		client: resty.New().SetTimeout(timeout).SetHeader("Accept", "application/json"),
		url:    url,
	}
}

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Locate implements Locator.
func (l *IPLocator) Locate(ctx context.Context) (domain.Position, error) {
	var body ipLookupResponse
	resp, err := l.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(l.url)
	if err != nil {
		return domain.Position{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return domain.Position{}, fmt.Errorf("%w: lookup returned %s", ErrUnavailable, resp.Status())
	}
	if body.Status != "" && !strings.EqualFold(body.Status, "success") {
		return domain.Position{}, fmt.Errorf("%w: lookup status %s %s", ErrUnavailable, body.Status, body.Message)
	}
	return domain.Position{Lat: body.Lat, Lng: body.Lon}, nil
}

// FromConfig picks the Locator for cfg.GeolocationMode.
func FromConfig(cfg config.Config) Locator {
	switch cfg.GeolocationMode {
	case config.GeoIP:
		return NewIPLocator(cfg.GeoIPURL, cfg.HTTPTimeout)
	case config.GeoStatic:
		return Static{Position: domain.Position{Lat: cfg.HomeLat, Lng: cfg.HomeLng}}
	default:
		return Unavailable{Reason: "geolocation disabled by configuration"}
	}
}
