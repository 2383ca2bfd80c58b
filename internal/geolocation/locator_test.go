package geolocation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/workoutmap/internal/config"
	"example.com/workoutmap/internal/domain"
)

func TestStaticLocate(t *testing.T) {
	pos, err := Static{Position: domain.Position{Lat: 34, Lng: -23}}.Locate(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.Position{Lat: 34, Lng: -23}, pos)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Static{}.Locate(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestUnavailableLocate(t *testing.T) {
	_, err := Unavailable{}.Locate(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestIPLocatorSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","lat":52.52,"lon":13.405}`))
	}))
	t.Cleanup(srv.Close)

	pos, err := NewIPLocator(srv.URL, time.Second).Locate(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.Position{Lat: 52.52, Lng: 13.405}, pos)
}

func TestIPLocatorFailures(t *testing.T) {
	failed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"fail","message":"private range"}`))
	}))
	t.Cleanup(failed.Close)

	_, err := NewIPLocator(failed.URL, time.Second).Locate(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	require.Contains(t, err.Error(), "private range")

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(broken.Close)

	_, err = NewIPLocator(broken.URL, time.Second).Locate(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestFromConfig(t *testing.T) {
	require.IsType(t, Static{}, FromConfig(config.Config{GeolocationMode: config.GeoStatic}))
	require.IsType(t, &IPLocator{}, FromConfig(config.Config{GeolocationMode: config.GeoIP, GeoIPURL: "http://x"}))
	require.IsType(t, Unavailable{}, FromConfig(config.Config{GeolocationMode: config.GeoDisabled}))
}
