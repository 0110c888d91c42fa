// Package report restructures analysis results into flat, export-ready tables.
//
// Nothing here computes: values are copied at full precision, except the
// statistics table, which carries the two-decimal display rounding.
package report

import (
	"sort"

	"macrocycle/internal/analysis"
	"macrocycle/internal/cycle"
	"macrocycle/internal/quarter"
)

// CycleRow is one quarter of the percent cycle table.
type CycleRow struct {
	Quarter     string `json:"quarter"`
	GDP         Number `json:"gdp_cycle_pct"`
	Consumption Number `json:"consumption_cycle_pct"`
	Investment  Number `json:"investment_cycle_pct"`
}

// TrendRow is one quarter of the log-trend table.
type TrendRow struct {
	Quarter     string `json:"quarter"`
	GDP         Number `json:"gdp_log_trend"`
	Consumption Number `json:"consumption_log_trend"`
	Investment  Number `json:"investment_log_trend"`
}

// StatisticsRow is one series of the statistics table, rounded to two decimals.
type StatisticsRow struct {
	Series             string `json:"series"`
	StdDevPct          Number `json:"std_dev_cycle_pct"`
	CorrelationWithGDP Number `json:"correlation_with_gdp_cycle"`
	Observations       int    `json:"observations"`
}

// TurningPointRow is one GDP cycle peak or trough.
type TurningPointRow struct {
	Quarter    string `json:"quarter"`
	Kind       string `json:"kind"`
	Value      Number `json:"value"`
	Prominence Number `json:"prominence"`
}

// ShockRow is one contiguous shock interval, inclusive at both ends.
type ShockRow struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Quarters  int    `json:"quarters"`
	Direction string `json:"direction"`
}

// GrowthRow is one quarter of one series' growth rates.
type GrowthRow struct {
	Quarter    string `json:"quarter"`
	Series     string `json:"series"`
	QoQ        Number `json:"qoq_pct"`
	YoY        Number `json:"yoy_pct"`
	Annualized Number `json:"annualized_pct"`
}

// ProductivityRow is one quarter of the productivity table.
type ProductivityRow struct {
	Quarter    string `json:"quarter"`
	RealGDP    Number `json:"real_gdp"`
	Population Number `json:"population"`
	Employment Number `json:"employment"`
	PerCapita  Number `json:"gdp_per_capita"`
	PerWorker  Number `json:"gdp_per_worker"`
}

// Report is the export-ready view of a run. Sections of tasks that failed or
// were not run are empty.
type Report struct {
	RunID          string            `json:"run_id,omitempty"`
	BaseQuarter    string            `json:"base_quarter,omitempty"`
	Cycle          []CycleRow        `json:"cycle"`
	Trend          []TrendRow        `json:"trend"`
	Smoothed       []CycleRow        `json:"smoothed_cycle"`
	Smoother       string            `json:"smoother,omitempty"`
	Statistics     []StatisticsRow   `json:"statistics"`
	TurningPoints  []TurningPointRow `json:"turning_points"`
	ShockThreshold Number            `json:"shock_threshold_pct"`
	Shocks         []ShockRow        `json:"shocks"`
	Growth         []GrowthRow       `json:"growth,omitempty"`
	Productivity   []ProductivityRow `json:"productivity,omitempty"`
	Failures       map[string]string `json:"failures,omitempty"`

	chart ChartInput
}

// Build restructures a business-cycle result.
func Build(bc *analysis.BusinessCycle) *Report {
	r := &Report{}
	if bc == nil {
		return r
	}

	labels := canonical(bc.Quarters)
	r.BaseQuarter = bc.BaseQuarter.Canonical()
	r.Smoother = bc.Smoother
	r.Cycle = make([]CycleRow, len(labels))
	r.Trend = make([]TrendRow, len(labels))
	r.Smoothed = make([]CycleRow, len(labels))
	for i, q := range labels {
		r.Cycle[i] = CycleRow{
			Quarter:     q,
			GDP:         at(bc.Cycle.GDP, i),
			Consumption: at(bc.Cycle.Consumption, i),
			Investment:  at(bc.Cycle.Investment, i),
		}
		r.Trend[i] = TrendRow{
			Quarter:     q,
			GDP:         at(bc.LogTrend.GDP, i),
			Consumption: at(bc.LogTrend.Consumption, i),
			Investment:  at(bc.LogTrend.Investment, i),
		}
		r.Smoothed[i] = CycleRow{
			Quarter:     q,
			GDP:         at(bc.Smoothed.GDP, i),
			Consumption: at(bc.Smoothed.Consumption, i),
			Investment:  at(bc.Smoothed.Investment, i),
		}
	}

	for _, s := range bc.Summary.RoundedStatistics() {
		r.Statistics = append(r.Statistics, StatisticsRow{
			Series:             s.Series,
			StdDevPct:          Number(s.StdDev),
			CorrelationWithGDP: Number(s.CorrelationWithReference),
			Observations:       s.Observations,
		})
	}

	for _, e := range bc.Summary.TurningPoints.All() {
		r.TurningPoints = append(r.TurningPoints, TurningPointRow{
			Quarter:    labels[e.Index],
			Kind:       string(e.Kind),
			Value:      Number(e.Value),
			Prominence: Number(e.Prominence),
		})
	}

	r.ShockThreshold = Number(bc.Summary.Shocks.Threshold)
	for _, s := range bc.Summary.Shocks.Intervals {
		r.Shocks = append(r.Shocks, ShockRow{
			Start:     labels[s.Start],
			End:       labels[s.End],
			Quarters:  s.Len(),
			Direction: direction(s),
		})
	}

	r.chart = chartInput(bc, labels)
	return r
}

// FromResults builds the report of a whole run, recording failed tasks by name.
func FromResults(res *analysis.Results) *Report {
	r := Build(res.BusinessCycle)
	r.RunID = res.RunID
	r.AddGrowth(res.Growth)
	r.AddProductivity(res.Productivity)
	if len(res.Errors) > 0 {
		r.Failures = make(map[string]string, len(res.Errors))
		for task, err := range res.Errors {
			r.Failures[task] = err.Error()
		}
	}
	return r
}

// AddGrowth appends the growth table in long form: quarter-major, series-minor.
func (r *Report) AddGrowth(g *analysis.GrowthResult) {
	if g == nil {
		return
	}
	if r.BaseQuarter == "" {
		r.BaseQuarter = g.BaseQuarter.Canonical()
	}
	for i, q := range canonical(g.Quarters) {
		for _, s := range g.Series {
			r.Growth = append(r.Growth, GrowthRow{
				Quarter:    q,
				Series:     s.Series,
				QoQ:        at(s.QuarterOnQuarter, i),
				YoY:        at(s.YearOnYear, i),
				Annualized: at(s.Annualized, i),
			})
		}
	}
}

// AddProductivity appends the productivity table.
func (r *Report) AddProductivity(p *analysis.ProductivityResult) {
	if p == nil {
		return
	}
	for i, q := range canonical(p.Quarters) {
		r.Productivity = append(r.Productivity, ProductivityRow{
			Quarter:    q,
			RealGDP:    at(p.RealGDP, i),
			Population: at(p.Population, i),
			Employment: at(p.Employment, i),
			PerCapita:  at(p.PerCapita, i),
			PerWorker:  at(p.PerWorker, i),
		})
	}
}

// FailedTasks returns the failed task names in sorted order.
func (r *Report) FailedTasks() []string {
	out := make([]string, 0, len(r.Failures))
	for task := range r.Failures {
		out = append(out, task)
	}
	sort.Strings(out)
	return out
}

func canonical(labels []quarter.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.Canonical()
	}
	return out
}

func direction(s cycle.Shock) string {
	if s.Sign > 0 {
		return "positive"
	}
	return "negative"
}
