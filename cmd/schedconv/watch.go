package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var errInvalidInterval = errors.New("watch interval must be positive")

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run fetch on an interval until interrupted",
	Long: `watch re-runs fetch every --interval. A failed round is logged and retried
on the next tick; the archive only grows when the feed changes.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if watchInterval <= 0 {
			return fmt.Errorf("%w: %s", errInvalidInterval, watchInterval)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return app.watch(ctx, watchInterval, fetchOpts)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Hour, "time between fetches")
	watchCmd.Flags().StringVarP(&fetchOpts.semester, "semester", "s", "", "semester code (default source.semester)")
	watchCmd.Flags().StringVar(&fetchOpts.url, "url", "", "feed URL (default source.url)")
	rootCmd.AddCommand(watchCmd)
}

func (a *App) watch(ctx context.Context, interval time.Duration, opts fetchOptions) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s", errInvalidInterval, interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	round := 0

	for {
		round++

		start := time.Now()
		if err := a.fetch(ctx, opts); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			a.log.Error("Fetch round failed", "round", round, "error", err)
		} else {
			a.log.Debug("Fetch round complete", "round", round, "duration", time.Since(start))
		}

		select {
		case <-ctx.Done():
			a.log.Info("Watch stopped", "rounds", round)
			return nil
		case <-ticker.C:
		}
	}
}
