package analysis

import (
	"context"
	"fmt"

	"macrocycle/internal/growth"
	"macrocycle/internal/quarter"
	"macrocycle/internal/table"
)

// ProductivityResult holds population, employment and real GDP per head on the
// quarterly axis. Annual population and employment are interpolated to quarters.
type ProductivityResult struct {
	BaseQuarter quarter.Label   `json:"base_quarter"`
	Quarters    []quarter.Label `json:"quarters"`
	RealGDP     []float64       `json:"real_gdp"`
	Population  []float64       `json:"population"`
	Employment  []float64       `json:"employment"`
	growth.Productivity
}

// Productivity derives real GDP per capita and per worker from the quarterly
// table and an annual table of population and employment.
func (a *Analyzer) Productivity(ctx context.Context, quarterly, annual *table.Table, opts Options) (*ProductivityResult, error) {
	opts = opts.withDefaults()
	if annual == nil {
		return nil, fmt.Errorf("no annual table supplied")
	}

	var rows map[string]table.Row
	err := a.stage(ctx, StageLookup, func(context.Context) error {
		var err error
		rows, err = annual.Require(opts.AnnualMatchers...)
		return err
	})
	if err != nil {
		return nil, err
	}

	p, err := a.prepare(ctx, quarterly, opts, optional(opts.Matchers, table.SeriesGDP, table.SeriesDeflator))
	if err != nil {
		return nil, err
	}

	out := &ProductivityResult{BaseQuarter: p.baseLabel, Quarters: p.axis, RealGDP: p.real.GDP}
	a.compute(ctx, StageInterp, func() {
		columns := make([]int, len(annual.Columns()))
		for i := range columns {
			columns[i] = i
		}
		series := func(key string) []float64 {
			values := annual.Values(rows[key], columns)
			return growth.InterpolateQuarterly(growth.ParseAnnual(annual.Columns(), values), p.axis)
		}
		out.Population = series(table.SeriesPopulation)
		out.Employment = series(table.SeriesEmployment)
	})

	a.compute(ctx, StageProdCalc, func() {
		out.Productivity = growth.ComputeProductivity(p.real.GDP, out.Population, out.Employment)
	})

	a.logger.DebugContext(ctx, "productivity computed", "quarters", len(out.Quarters))
	return out, nil
}
