package main

import (
	"io"
	"sort"

	"github.com/spf13/cobra"

	"schedconv/internal/normalizer"
	"schedconv/internal/report"
)

var departmentsCmd = &cobra.Command{
	Use:   "departments",
	Short: "List the department codes the converter recognises",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return app.departments()
	},
}

func init() {
	rootCmd.AddCommand(departmentsCmd)
}

func (a *App) departments() error {
	codes := normalizer.Departments()
	sort.Strings(codes)

	table := report.NewTable("Code", "Name")

	for _, code := range codes {
		name, err := normalizer.DepartmentName(code)
		if err != nil {
			return err
		}

		table.Add(code, name)
	}

	_, err := io.WriteString(a.out, table.String())

	return err
}
