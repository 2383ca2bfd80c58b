package main

import (
	"context"
	"fmt"
	"os"

	"example.com/workoutmap/internal/config"
	"example.com/workoutmap/internal/persistence"
)

func main() {
	open := func(ctx context.Context) (persistence.Store, func(), config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, cfg, err
		}
		store, closer, err := persistence.OpenStore(ctx, cfg)
		return store, closer, cfg, err
	}

	if err := newRootCmd(open, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
