package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"schedconv/internal/archive"
	"schedconv/internal/config"
	"schedconv/internal/logger"
)

var (
	cfgFile  string
	logLevel string

	// app is populated before any subcommand runs.
	app = &App{}
)

// App carries the resolved configuration shared by every subcommand.
type App struct {
	cfg *config.Config
	log *logger.Logger
	out io.Writer
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "schedconv",
	Short: "Convert registrar course catalogs into schedb documents.",
	Long: `schedconv converts a semester's registrar course catalog export into the
schedb XML consumed by the scheduler, archives every distinct conversion and
serves the archive over HTTP.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return app.setup(cmd)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./schedconv.yaml, then $HOME/.schedconv.yaml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "loglevel", "l", "", "override log level: debug, info, warn, error")
}

func (a *App) setup(cmd *cobra.Command) error {
	cfg, path, err := config.Resolve(cfgFile)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logger.NewLoggerWithOutput(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr()).With("run", uuid.NewString())
	a.out = cmd.OutOrStdout()

	if logLevel != "" {
		a.log.SetLevel(logLevel)
	}

	if path == "" {
		a.log.Debug("No config file found, using defaults")
	} else {
		a.log.Debug("Loaded configuration", "path", path, "config", cfg.String())
	}

	return nil
}

func (a *App) openArchive(ctx context.Context) (archive.Store, error) {
	store, err := archive.Open(ctx, a.cfg.Archive.Driver, a.cfg.Archive.DSN)
	if err != nil {
		return nil, err
	}

	a.log.Debug("Opened archive", "driver", a.cfg.Archive.Driver)

	return store, nil
}
