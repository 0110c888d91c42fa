package analysis

import (
	"context"

	"macrocycle/internal/growth"
	"macrocycle/internal/quarter"
	"macrocycle/internal/table"
)

// GrowthSeries holds the growth rates of one real aggregate on the full time axis.
type GrowthSeries struct {
	Series           string    `json:"series"`
	QuarterOnQuarter []float64 `json:"qoq_pct"`
	YearOnYear       []float64 `json:"yoy_pct"`
	Annualized       []float64 `json:"annualized_pct"`
	AverageQoQ       float64   `json:"average_qoq_pct"`
}

// GrowthResult is the output of the growth-rate analysis.
type GrowthResult struct {
	BaseQuarter quarter.Label   `json:"base_quarter"`
	Quarters    []quarter.Label `json:"quarters"`
	Series      []GrowthSeries  `json:"series"`
}

// Growth computes quarter-on-quarter, year-on-year and annualized growth of
// the real aggregates. Only GDP and the deflator are required: consumption and
// investment are reported when their rows exist, so a table that cannot support
// the business-cycle run can still yield GDP growth.
func (a *Analyzer) Growth(ctx context.Context, t *table.Table, opts Options) (*GrowthResult, error) {
	opts = opts.withDefaults()

	p, err := a.prepare(ctx, t, opts, optional(opts.Matchers, table.SeriesGDP, table.SeriesDeflator))
	if err != nil {
		return nil, err
	}

	out := &GrowthResult{BaseQuarter: p.baseLabel, Quarters: p.axis}
	a.compute(ctx, StageGrowth, func() {
		add := func(name string, x []float64) {
			out.Series = append(out.Series, GrowthSeries{
				Series:           name,
				QuarterOnQuarter: growth.PercentChange(x, growth.LagQuarterOnQuarter),
				YearOnYear:       growth.PercentChange(x, growth.LagYearOnYear),
				Annualized:       growth.Annualized(x),
				AverageQoQ:       growth.Average(growth.PercentChange(x, growth.LagQuarterOnQuarter)),
			})
		}
		add("GDP", p.real.GDP)
		if p.present[table.SeriesConsumption] {
			add("Consumption", p.real.Consumption)
		}
		if p.present[table.SeriesInvestment] {
			add("Investment", p.real.Investment)
		}
	})

	a.logger.DebugContext(ctx, "growth rates computed", "series", len(out.Series), "quarters", len(out.Quarters))
	return out, nil
}
