package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"example.com/workoutmap/internal/config"
	"example.com/workoutmap/internal/domain"
	"example.com/workoutmap/internal/persistence"
)

type storeOpener func(ctx context.Context) (persistence.Store, func(), config.Config, error)

type app struct {
	open    storeOpener
	out     io.Writer
	key     string
	factory *domain.Factory
}

func newRootCmd(open storeOpener, out io.Writer) *cobra.Command {
	a := &app{open: open, out: out, factory: domain.NewFactory()}

	rootCmd := &cobra.Command{
		Use:           "workoutctl",
		Short:         "Inspect and edit the stored workout collection",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&a.key, "key", "k", "", "Storage key (defaults to WORKOUTMAP_STORAGE_KEY)")

	rootCmd.AddCommand(a.listCmd(), a.addCmd(), a.deleteCmd(), a.exportCmd())
	return rootCmd
}

// withAdapter opens the configured store for the duration of fn.
func (a *app) withAdapter(ctx context.Context, fn func(*persistence.Adapter) error) error {
	store, closer, cfg, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer closer()

	key := cfg.StorageKey
	if a.key != "" {
		key = a.key
	}
	return fn(persistence.NewAdapter(store, key))
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored workouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAdapter(cmd.Context(), func(ad *persistence.Adapter) error {
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDESCRIPTION\tPOSITION\tKM\tMIN\tPACE/SPEED\tCADENCE/ELEV")
				for _, w := range ad.Load(cmd.Context()) {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						w.ID, w.Description, w.Position,
						num(w.DistanceKm), num(w.DurationMin),
						strconv.FormatFloat(w.Metric(), 'f', 1, 64), num(w.Extra()))
				}
				return tw.Flush()
			})
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	var (
		lat, lng float64
		form     domain.FormInput
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Validate and append a workout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.factory.FromForm(form, domain.Position{Lat: lat, Lng: lng})
			if err != nil {
				return err
			}
			return a.withAdapter(cmd.Context(), func(ad *persistence.Adapter) error {
				workouts, err := ad.Read(cmd.Context())
				if err != nil {
					return err
				}
				workouts = append(workouts, w)
				if err := ad.Save(cmd.Context(), workouts); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(a.out, "added %s (%s)\n", w.ID, w.Description)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&form.Type, "type", "t", string(domain.KindRunning), "running or cycling")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude")
	cmd.Flags().StringVarP(&form.Distance, "distance", "d", "", "Distance in km (required)")
	cmd.Flags().StringVarP(&form.Duration, "duration", "m", "", "Duration in minutes (required)")
	cmd.Flags().StringVar(&form.Cadence, "cadence", "", "Cadence in steps per minute (running)")
	cmd.Flags().StringVar(&form.Elevation, "elevation", "", "Elevation gain in metres (cycling)")
	_ = cmd.MarkFlagRequired("distance")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete WORKOUT_ID",
		Short: "Remove a workout by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return a.withAdapter(cmd.Context(), func(ad *persistence.Adapter) error {
				workouts, err := ad.Read(cmd.Context())
				if err != nil {
					return err
				}
				before := len(workouts)
				kept := slices.DeleteFunc(workouts, func(w domain.Workout) bool { return w.ID == id })
				if len(kept) == before {
					return fmt.Errorf("workout %q not found", id)
				}
				if err := ad.Save(cmd.Context(), kept); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(a.out, "deleted %s\n", id)
				return nil
			})
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the stored collection as versioned JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAdapter(cmd.Context(), func(ad *persistence.Adapter) error {
				body, err := persistence.Encode(ad.Load(cmd.Context()))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.out, body)
				return err
			})
		},
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
