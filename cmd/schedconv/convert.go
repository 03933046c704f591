package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"schedconv/internal/archive"
	"schedconv/internal/normalizer"
	"schedconv/internal/report"
	"schedconv/pkg/metadata"
)

type convertOptions struct {
	input    string
	output   string
	semester string
	archive  bool
	report   bool
}

var convertOpts convertOptions

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a local catalog export into a schedb document",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return app.convert(cmd.Context(), convertOpts)
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertOpts.input, "input", "i", "", "catalog XML to convert (default source.file)")
	convertCmd.Flags().StringVarP(&convertOpts.output, "output", "o", "", "schedb file to write (default output.path)")
	convertCmd.Flags().StringVarP(&convertOpts.semester, "semester", "s", "", "semester code (default source.semester)")
	convertCmd.Flags().BoolVar(&convertOpts.archive, "archive", false, "store the result in the archive")
	convertCmd.Flags().BoolVar(&convertOpts.report, "report", false, "print a conversion summary")
	rootCmd.AddCommand(convertCmd)
}

// conversion is one converted document ready to be written and archived.
type conversion struct {
	result *normalizer.Result
	xml    []byte
	meta   metadata.Metadata
}

func (a *App) convert(ctx context.Context, opts convertOptions) error {
	semester := opts.semester
	if semester == "" {
		semester = a.cfg.Source.Semester
	}

	input := opts.input
	if input == "" {
		input = a.cfg.Source.File
	}

	if input == "" {
		return errors.New("no input: pass --input or set source.file")
	}

	output := opts.output
	if output == "" {
		output = a.cfg.GetOutputPath(semester)
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat input: %w", err)
	}

	conv, err := a.transform(f, semester)
	if err != nil {
		return err
	}

	if err := a.writeOutput(conv, output); err != nil {
		return err
	}

	if opts.archive {
		lastModified := conv.result.Published
		if lastModified.IsZero() {
			lastModified = info.ModTime()
		}

		if err := a.archiveConversion(ctx, conv, lastModified); err != nil {
			return err
		}
	}

	if opts.report {
		return reportConversion(a, conv)
	}

	return nil
}

func (a *App) transform(r io.Reader, semester string) (*conversion, error) {
	transformer := normalizer.NewTransformerWithDeps(normalizer.NewValidator(), a.log, time.Now)
	processor := normalizer.NewProcessorWithDeps(transformer, a.cfg.Output.Indent)

	var buf bytes.Buffer

	res, err := processor.Process(r, &buf)
	if err != nil {
		return nil, err
	}

	conv := &conversion{
		result: res,
		xml:    buf.Bytes(),
		meta:   metadata.Describe(semester, buf.Bytes()),
	}

	a.log.Info("Converted catalog",
		"semester", semester,
		"read", res.CoursesRead,
		"kept", res.CoursesKept(),
		"pruned", len(res.Pruned),
		"departments", len(res.Document.Departments),
	)

	return conv, nil
}

// write saves the document unless path already holds the same content apart
// from its generation stamp. It reports whether the file was written.
func (c *conversion) write(path string) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && metadata.Same(existing, c.xml) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(path, c.xml, 0644); err != nil {
		return false, fmt.Errorf("failed to write output: %w", err)
	}

	return true, nil
}

func (a *App) writeOutput(conv *conversion, path string) error {
	written, err := conv.write(path)
	if err != nil {
		return err
	}

	if written {
		a.log.Info("Saved schedb", "path", path, "size", conv.meta.HumanSize())
	} else {
		a.log.Info("Output unchanged, not rewritten", "path", path)
	}

	return nil
}

func (a *App) archiveConversion(ctx context.Context, conv *conversion, lastModified time.Time) error {
	store, err := a.openArchive(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	return a.save(ctx, store, conv, lastModified)
}

func (a *App) save(ctx context.Context, store archive.Store, conv *conversion, lastModified time.Time) error {
	id, err := store.Save(ctx, &archive.Snapshot{
		Semester:     conv.meta.Semester,
		LastModified: lastModified,
		ParsedAt:     time.Now().UTC(),
		Digest:       conv.meta.Digest,
		Courses:      conv.result.CoursesKept(),
		Pruned:       len(conv.result.Pruned),
		XML:          conv.xml,
	})

	switch {
	case errors.Is(err, archive.ErrUnchanged):
		a.log.Info("Snapshot unchanged, not archived", "semester", conv.meta.Semester, "latest", id)
		return nil
	case err != nil:
		return fmt.Errorf("failed to archive snapshot: %w", err)
	}

	a.log.Info("Archived snapshot", "semester", conv.meta.Semester, "id", id, "digest", conv.meta.ShortDigest())

	return nil
}

func reportConversion(a *App, conv *conversion) error {
	return report.Conversion(a.out, conv.result, conv.meta)
}
