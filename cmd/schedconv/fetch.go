package main

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"schedconv/internal/archive"
	"schedconv/internal/feed"
)

type fetchOptions struct {
	url      string
	file     string
	semester string
	output   string
	force    bool
	report   bool
}

var fetchOpts fetchOptions

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the semester feed, convert it and archive the result",
	Long: `fetch downloads the configured feed (or reads source.file), skipping the
conversion when the feed has not changed since the latest archived snapshot.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return app.fetch(cmd.Context(), fetchOpts)
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchOpts.url, "url", "", "feed URL (default source.url)")
	fetchCmd.Flags().StringVar(&fetchOpts.file, "file", "", "read the feed from a local file instead")
	fetchCmd.Flags().StringVarP(&fetchOpts.semester, "semester", "s", "", "semester code (default source.semester)")
	fetchCmd.Flags().StringVarP(&fetchOpts.output, "output", "o", "", "schedb file to write (default output.path)")
	fetchCmd.Flags().BoolVarP(&fetchOpts.force, "force", "f", false, "convert even if the feed is not modified")
	fetchCmd.Flags().BoolVar(&fetchOpts.report, "report", false, "print a conversion summary")
	rootCmd.AddCommand(fetchCmd)
}

func (a *App) fetch(ctx context.Context, opts fetchOptions) error {
	src := a.cfg.Source
	if opts.semester != "" {
		src.Semester = opts.semester
	}

	if opts.url != "" {
		src.URL = opts.url
		src.File = ""
	}

	if opts.file != "" {
		src.File = opts.file
	}

	output := opts.output
	if output == "" {
		output = a.cfg.GetOutputPath(src.Semester)
	}

	store, err := a.openArchive(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	var since time.Time

	latest, err := store.Latest(ctx, src.Semester)

	switch {
	case err == nil && !opts.force:
		since = latest.LastModified
	case err != nil && !errors.Is(err, archive.ErrNotFound):
		return err
	}

	fd, err := feed.NewFetcher(a.cfg.Retry, a.log).Fetch(ctx, src, since)
	if err != nil {
		return err
	}

	if fd.NotModified {
		a.log.Info("Feed not modified", "semester", src.Semester, "source", fd.Source, "since", since)
		return nil
	}

	conv, err := a.transform(bytes.NewReader(fd.Body), src.Semester)
	if err != nil {
		return err
	}

	if err := a.writeOutput(conv, output); err != nil {
		return err
	}

	lastModified := fd.LastModified
	if lastModified.IsZero() {
		lastModified = conv.result.Published
	}

	if lastModified.IsZero() {
		lastModified = time.Now().UTC()
	}

	if err := a.save(ctx, store, conv, lastModified); err != nil {
		return err
	}

	if opts.report {
		return reportConversion(a, conv)
	}

	return nil
}
