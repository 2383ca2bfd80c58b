// Package httptransport serves the API mux with request logging.
package httptransport

import (
	"log"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"example.com/workoutmap/internal/config"
)

const idleTimeout = 60 * time.Second

// ServerConfig contains tunables for the HTTP server.
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Logger       zerolog.Logger
}

// ConfigFrom derives server tunables from the service configuration. Writes get twice the
// read budget so a slow storage save still answers.
func ConfigFrom(cfg config.Config, logger zerolog.Logger) ServerConfig {
	return ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: 2 * cfg.HTTPTimeout,
		IdleTimeout:  idleTimeout,
		Logger:       logger,
	}
}

// NewServer wraps handler in request logging and returns the configured *http.Server.
// Server-level errors go to the same logger.
func NewServer(cfg ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      logRequests(cfg.Logger, handler),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorLog:     log.New(cfg.Logger.With().Str("component", "http").Logger(), "", 0),
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("latency", time.Since(start)).
			Msg("request")
	})
}
