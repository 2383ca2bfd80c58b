package httptransport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"example.com/workoutmap/internal/config"
)

func TestConfigFromDerivesTimeouts(t *testing.T) {
	cfg := ConfigFrom(config.Config{HTTPAddress: ":9999", HTTPTimeout: 2 * time.Second}, zerolog.Nop())

	require.Equal(t, ":9999", cfg.Address)
	require.Equal(t, 2*time.Second, cfg.ReadTimeout)
	require.Equal(t, 4*time.Second, cfg.WriteTimeout)
	require.Equal(t, idleTimeout, cfg.IdleTimeout)

	srv := NewServer(cfg, http.NewServeMux())
	require.Equal(t, ":9999", srv.Addr)
	require.Equal(t, 4*time.Second, srv.WriteTimeout)
	require.NotNil(t, srv.ErrorLog)
}

func TestServerLogsRequestStatus(t *testing.T) {
	var buf bytes.Buffer
	srv := NewServer(ServerConfig{Logger: zerolog.New(&buf).Level(zerolog.DebugLevel)},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/form", nil))
	require.Equal(t, http.StatusTeapot, rr.Code)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "POST", entry["method"])
	require.Equal(t, "/v1/form", entry["path"])
	require.EqualValues(t, http.StatusTeapot, entry["status"])
}
