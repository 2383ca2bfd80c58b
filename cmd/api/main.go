package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/workoutmap/internal/api"
	"example.com/workoutmap/internal/config"
	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/geolocation"
	"example.com/workoutmap/internal/listview"
	"example.com/workoutmap/internal/logging"
	"example.com/workoutmap/internal/mapview"
	"example.com/workoutmap/internal/persistence"
	"example.com/workoutmap/internal/session"
	httptransport "example.com/workoutmap/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.ServiceName, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := persistence.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage")
	}
	defer closeStore()

	adapter := persistence.NewAdapter(store, cfg.StorageKey, persistence.WithLogger(logger))
	canvas := mapview.NewCanvas()
	board := listview.NewBoard()

	ctrl := session.NewController(
		session.NewMachine(domain.NewFactory(), cfg.ZoomLevel),
		mapview.NewPresenter(canvas, mapview.TileLayer{URLTemplate: cfg.TileURL, Attribution: cfg.TileAttribution}),
		listview.NewPresenter(board),
		adapter,
		session.WithLogger(logger),
	)
	sess := session.New(ctrl, logger)

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = sess.Run(ctx)
	}()

	if _, err := sess.Start(ctx, adapter, geolocation.FromConfig(cfg)); err != nil {
		logger.Fatal().Err(err).Msg("failed to start session")
	}

	handler := api.NewHandler(sess, canvas, board)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	server := httptransport.NewServer(httptransport.ConfigFrom(cfg, logger), mux)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info().
			Str("addr", cfg.HTTPAddress).
			Str("storage", cfg.StorageDriver).
			Str("geolocation", cfg.GeolocationMode).
			Msg("workoutmap listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-shutdownCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	cancel()
	<-loopDone
}
