package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"schedconv/internal/normalizer"
	"schedconv/internal/report"
	"schedconv/internal/validator"
)

var errInvalidDocument = errors.New("schedb document is invalid")

var checkID int64

var checkCmd = &cobra.Command{
	Use:   "check [schedb-file]",
	Short: "Check a schedb document, or an archived snapshot with --id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}

		return app.check(cmd.Context(), path, checkID)
	},
}

func init() {
	checkCmd.Flags().Int64Var(&checkID, "id", 0, "check the archived snapshot with this id")
	rootCmd.AddCommand(checkCmd)
}

func (a *App) check(ctx context.Context, path string, id int64) error {
	var (
		data []byte
		err  error
	)

	switch {
	case id > 0:
		data, err = a.snapshotXML(ctx, id)
	case path != "":
		data, err = os.ReadFile(path)
	default:
		data, err = os.ReadFile(a.cfg.Output.Path)
	}

	if err != nil {
		return err
	}

	doc, err := normalizer.DecodeSchedb(bytes.NewReader(data))
	if err != nil {
		return err
	}

	result := validator.Validate(doc)

	if _, err := fmt.Fprintln(a.out, result.String()); err != nil {
		return err
	}

	if len(result.Errors) > 0 {
		table := report.NewTable("Path", "Field", "Value", "Problem")
		for _, e := range result.Errors {
			table.Add(e.Path, e.Field, e.Value, e.Message)
		}

		if _, err := io.WriteString(a.out, "\n"+table.String()); err != nil {
			return err
		}
	}

	for _, w := range result.Warnings {
		a.log.Warn("Check warning", "detail", w)
	}

	if !result.IsValid {
		return fmt.Errorf("%w: %d errors", errInvalidDocument, len(result.Errors))
	}

	return nil
}

func (a *App) snapshotXML(ctx context.Context, id int64) ([]byte, error) {
	store, err := a.openArchive(ctx)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	snap, err := store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("snapshot %d: %w", id, err)
	}

	return snap.XML, nil
}
