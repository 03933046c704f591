package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"schedconv/internal/config"
	"schedconv/internal/report"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [semester]",
	Short: "List archived snapshots of a semester",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		semester := ""
		if len(args) == 1 {
			semester = args[0]
		}

		return app.history(cmd.Context(), semester, historyLimit)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum snapshots to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func (a *App) history(ctx context.Context, semester string, limit int) error {
	if semester == "" {
		semester = a.cfg.Source.Semester
	}

	if !config.IsSemester(semester) {
		return fmt.Errorf("%w: %q", config.ErrInvalidSemester, semester)
	}

	store, err := a.openArchive(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	snaps, err := store.List(ctx, semester, limit)
	if err != nil {
		return err
	}

	return report.History(a.out, semester, snaps)
}
