package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"schedconv/internal/archive"
	"schedconv/internal/report"
)

var diffCmd = &cobra.Command{
	Use:   "diff <from-id> <to-id>",
	Short: "Compare the courses of two archived snapshots",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid snapshot id %q", args[0])
		}

		to, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid snapshot id %q", args[1])
		}

		return app.diff(cmd.Context(), from, to)
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func (a *App) diff(ctx context.Context, from, to int64) error {
	store, err := a.openArchive(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	d, err := archive.CompareSnapshots(ctx, store, from, to)
	if err != nil {
		return err
	}

	return report.Diff(a.out, d)
}
