package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"macrocycle/internal/analysis"
	"macrocycle/internal/report"
)

// printSummary writes the human-readable run summary.
func printSummary(w io.Writer, res *analysis.Results, rep *report.Report) {
	fmt.Fprintf(w, "Run %s\n", res.RunID)

	if bc := res.BusinessCycle; bc != nil {
		fmt.Fprintf(w, "\nBusiness cycle (base %s, %d quarters", rep.BaseQuarter, len(bc.Quarters))
		if len(bc.Quarters) > 0 {
			fmt.Fprintf(w, ", %s to %s", bc.Quarters[0].Canonical(), bc.Quarters[len(bc.Quarters)-1].Canonical())
		}
		fmt.Fprintln(w, ")")
		if n := len(bc.DroppedQuarters); n > 0 {
			fmt.Fprintf(w, "  %d quarter(s) with missing values excluded\n", n)
		}
		if bc.InventoriesMissing {
			fmt.Fprintln(w, "  inventories not found: investment is gross fixed capital formation only")
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "\tSeries\tStd dev (%)\tCorr. with GDP\t")
		for _, s := range rep.Statistics {
			fmt.Fprintf(tw, "\t%s\t%s\t%s\t\n", s.Series, fixed2(s.StdDevPct.Float()), fixed2(s.CorrelationWithGDP.Float()))
		}
		tw.Flush()

		fmt.Fprintln(w)
		if len(rep.TurningPoints) == 0 {
			fmt.Fprintln(w, "Turning points: none")
		} else {
			parts := make([]string, len(rep.TurningPoints))
			for i, p := range rep.TurningPoints {
				parts[i] = fmt.Sprintf("%s %s", p.Kind, p.Quarter)
			}
			fmt.Fprintf(w, "Turning points: %s\n", strings.Join(parts, ", "))
		}
		if len(rep.Shocks) == 0 {
			fmt.Fprintf(w, "Shocks (|cycle| >= %s%%): none\n", fixed2(rep.ShockThreshold.Float()))
		} else {
			parts := make([]string, len(rep.Shocks))
			for i, s := range rep.Shocks {
				parts[i] = fmt.Sprintf("%s %s..%s", s.Direction, s.Start, s.End)
			}
			fmt.Fprintf(w, "Shocks (|cycle| >= %s%%): %s\n", fixed2(rep.ShockThreshold.Float()), strings.Join(parts, ", "))
		}
	}

	if g := res.Growth; g != nil {
		fmt.Fprintln(w, "\nAverage quarter-on-quarter growth")
		for _, s := range g.Series {
			fmt.Fprintf(w, "  %-12s %s%%\n", s.Series, fixed2(s.AverageQoQ))
		}
	}

	if p := res.Productivity; p != nil {
		fmt.Fprintf(w, "\nProductivity: %d quarters\n", len(p.Quarters))
	}

	if failed := rep.FailedTasks(); len(failed) > 0 {
		fmt.Fprintln(w, "\nFailed tasks")
		for _, task := range failed {
			fmt.Fprintf(w, "  %s: %s\n", task, rep.Failures[task])
		}
	}
}

// printFiles lists the exported files.
func printFiles(w io.Writer, files []string) {
	if len(files) == 0 {
		return
	}
	fmt.Fprintln(w, "\nWritten")
	for _, f := range files {
		fmt.Fprintf(w, "  %s\n", f)
	}
}

func fixed2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
