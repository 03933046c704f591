package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"schedconv/internal/config"
)

var errConfigExists = errors.New("config file already exists")

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with the default settings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		path := config.LocalConfigName
		if len(args) == 1 {
			path = args[0]
		}

		return app.initConfig(path, initForce)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}

func (a *App) initConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s", errConfigExists, path)
	}

	if err := config.DefaultConfig().SaveConfig(path); err != nil {
		return err
	}

	a.log.Info("Wrote default config", "path", path)

	return nil
}
