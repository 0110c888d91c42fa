package exporter

import "macrocycle/internal/report"

// Table names, used as CSV file stems and workbook sheet names.
const (
	TableCycle         = "cycle_pct"
	TableTrend         = "log_trend"
	TableSmoothed      = "smoothed_cycle_pct"
	TableStatistics    = "statistics"
	TableTurningPoints = "turning_points"
	TableShocks        = "shocks"
	TableGrowth        = "growth"
	TableProductivity  = "productivity"
)

// Table is one exportable report table. Cells hold string, int, float64,
// report.Number or rounded values.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// Tables flattens a report into its tables. Sections with no rows are
// skipped, except statistics, turning points and shocks, which are written
// whenever the business cycle ran.
func Tables(r *report.Report) []Table {
	var out []Table
	if len(r.Cycle) > 0 {
		out = append(out,
			cycleTable(TableCycle, r.Cycle),
			trendTable(r.Trend),
			cycleTable(TableSmoothed, r.Smoothed),
			statisticsTable(r.Statistics),
			turningPointsTable(r.TurningPoints),
			shocksTable(r.Shocks),
		)
	}
	if len(r.Growth) > 0 {
		out = append(out, growthTable(r.Growth))
	}
	if len(r.Productivity) > 0 {
		out = append(out, productivityTable(r.Productivity))
	}
	return out
}

func cycleTable(name string, rows []report.CycleRow) Table {
	t := Table{Name: name, Headers: []string{"quarter", "gdp", "consumption", "investment"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Quarter, r.GDP, r.Consumption, r.Investment})
	}
	return t
}

func trendTable(rows []report.TrendRow) Table {
	t := Table{Name: TableTrend, Headers: []string{"quarter", "gdp", "consumption", "investment"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Quarter, r.GDP, r.Consumption, r.Investment})
	}
	return t
}

func statisticsTable(rows []report.StatisticsRow) Table {
	t := Table{Name: TableStatistics, Headers: []string{"series", "std_dev_cycle_pct", "correlation_with_gdp_cycle", "observations"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Series, rounded(r.StdDevPct), rounded(r.CorrelationWithGDP), r.Observations})
	}
	return t
}

func turningPointsTable(rows []report.TurningPointRow) Table {
	t := Table{Name: TableTurningPoints, Headers: []string{"quarter", "kind", "gdp_cycle_pct", "prominence"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Quarter, r.Kind, r.Value, r.Prominence})
	}
	return t
}

func shocksTable(rows []report.ShockRow) Table {
	t := Table{Name: TableShocks, Headers: []string{"start", "end", "quarters", "direction"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Start, r.End, r.Quarters, r.Direction})
	}
	return t
}

func growthTable(rows []report.GrowthRow) Table {
	t := Table{Name: TableGrowth, Headers: []string{"quarter", "series", "qoq_pct", "yoy_pct", "annualized_pct"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Quarter, r.Series, r.QoQ, r.YoY, r.Annualized})
	}
	return t
}

func productivityTable(rows []report.ProductivityRow) Table {
	t := Table{Name: TableProductivity, Headers: []string{"quarter", "real_gdp", "population", "employment", "gdp_per_capita", "gdp_per_worker"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Quarter, r.RealGDP, r.Population, r.Employment, r.PerCapita, r.PerWorker})
	}
	return t
}
