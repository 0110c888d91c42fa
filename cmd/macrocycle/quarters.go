package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"macrocycle/internal/analysis"
	"macrocycle/internal/table"
)

func newQuartersCmd() *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "quarters FILE",
		Short: "Print the time axis parsed from a table's column headers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := table.ReadFile(args[0], sheet)
			if err != nil {
				return err
			}
			ax, err := analysis.DescribeAxis(t, nil)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Quarters: %d (%s to %s)\n", len(ax.Quarters), ax.First, ax.Last)
			fmt.Fprintln(w, strings.Join(ax.Quarters, ", "))
			if len(ax.Invalid) > 0 {
				fmt.Fprintf(w, "Ignored headers: %s\n", strings.Join(ax.Invalid, ", "))
			}
			if len(ax.Duplicates) > 0 {
				fmt.Fprintf(w, "Duplicate quarters: %s\n", strings.Join(ax.Duplicates, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "worksheet name for .xlsx inputs")
	return cmd
}
