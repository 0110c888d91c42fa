package analysis

import (
	"context"
	"fmt"

	"macrocycle/internal/cycle"
	"macrocycle/internal/deflate"
	"macrocycle/internal/hpfilter"
	"macrocycle/internal/quarter"
	"macrocycle/internal/table"
)

// SeriesSet holds one value per valid quarter for each aggregate.
type SeriesSet struct {
	GDP         []float64 `json:"gdp"`
	Consumption []float64 `json:"consumption"`
	Investment  []float64 `json:"investment"`
}

// BusinessCycle is the output of one business-cycle run. Every series is on
// the Quarters axis, the chronologically sorted quarters where the deflator
// and all three real aggregates are finite.
type BusinessCycle struct {
	BaseQuarter     quarter.Label   `json:"base_quarter"`
	Quarters        []quarter.Label `json:"quarters"`
	DroppedQuarters []quarter.Label `json:"dropped_quarters,omitempty"`
	InvalidHeaders  []string        `json:"invalid_headers,omitempty"`

	Deflator []float64 `json:"deflator_rebased"`
	Real     SeriesSet `json:"real"`
	LogTrend SeriesSet `json:"log_trend"`
	// Cycle is 100 × the log cycle (percent deviation from trend).
	Cycle SeriesSet `json:"cycle_pct"`
	// Smoothed is presentation-only and never feeds Summary.
	Smoothed       SeriesSet `json:"smoothed_cycle_pct"`
	Smoother       string    `json:"smoother"`
	SmootherWindow int       `json:"smoother_window"`

	Summary            cycle.Summary `json:"summary"`
	InventoriesMissing bool          `json:"inventories_missing"`
}

// BusinessCycle runs the full pipeline: series lookup, time axis, base quarter,
// rebasing and deflation, valid subsequence, log HP filter, statistics, turning
// points, shock bands and presentation smoothing.
func (a *Analyzer) BusinessCycle(ctx context.Context, t *table.Table, opts Options) (*BusinessCycle, error) {
	opts = opts.withDefaults()

	p, err := a.prepare(ctx, t, opts, opts.Matchers)
	if err != nil {
		return nil, err
	}

	out := &BusinessCycle{
		BaseQuarter:        p.baseLabel,
		InvalidHeaders:     p.index.Invalid(),
		InventoriesMissing: p.real.InventoriesMissing,
	}

	a.compute(ctx, StageFilter, func() {
		mask := deflate.ValidMask(p.real.Rebased, p.real.GDP, p.real.Consumption, p.real.Investment)
		for i, ok := range mask {
			if !ok {
				out.DroppedQuarters = append(out.DroppedQuarters, p.axis[i])
			}
		}
		out.Quarters = deflate.Select(p.axis, mask)
		out.Deflator = deflate.Select(p.real.Rebased, mask)
		out.Real = SeriesSet{
			GDP:         deflate.Select(p.real.GDP, mask),
			Consumption: deflate.Select(p.real.Consumption, mask),
			Investment:  deflate.Select(p.real.Investment, mask),
		}
	})
	if len(out.DroppedQuarters) > 0 {
		a.logger.InfoContext(ctx, "quarters with missing values excluded from the decomposition",
			"count", len(out.DroppedQuarters))
	}
	a.metrics.RecordQuarters(ctx, len(out.Quarters))

	err = a.stage(ctx, StageHP, func(context.Context) error {
		gdp, err := hpfilter.LogDecompose(out.Real.GDP, opts.Lambda)
		if err != nil {
			return fmt.Errorf("gdp: %w", err)
		}
		cons, err := hpfilter.LogDecompose(out.Real.Consumption, opts.Lambda)
		if err != nil {
			return fmt.Errorf("consumption: %w", err)
		}
		inv, err := hpfilter.LogDecompose(out.Real.Investment, opts.Lambda)
		if err != nil {
			return fmt.Errorf("investment: %w", err)
		}
		out.LogTrend = SeriesSet{GDP: gdp.Trend, Consumption: cons.Trend, Investment: inv.Trend}
		out.Cycle = SeriesSet{GDP: gdp.CyclePct, Consumption: cons.CyclePct, Investment: inv.CyclePct}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(out.Quarters) < hpfilter.MinObservations {
		a.logger.WarnContext(ctx, "too few valid quarters for the HP filter, trend equals the series",
			"quarters", len(out.Quarters),
			"minimum", hpfilter.MinObservations)
	}

	a.compute(ctx, StageStats, func() {
		out.Summary = cycle.Summarize(out.Cycle.GDP, out.Cycle.Consumption, out.Cycle.Investment,
			opts.ProminenceFactor, opts.ShockMultiplier)
	})

	a.compute(ctx, StageSmooth, func() {
		out.Smoother = opts.Smoother.Name()
		out.SmootherWindow = opts.Smoother.Window()
		out.Smoothed = SeriesSet{
			GDP:         opts.Smoother.Smooth(out.Cycle.GDP),
			Consumption: opts.Smoother.Smooth(out.Cycle.Consumption),
			Investment:  opts.Smoother.Smooth(out.Cycle.Investment),
		}
	})

	a.logger.DebugContext(ctx, "business cycle computed",
		"quarters", len(out.Quarters),
		"base_quarter", out.BaseQuarter.Canonical(),
		"gdp_std_dev", out.Summary.Statistics[0].StdDev,
		"peaks", len(out.Summary.TurningPoints.Peaks),
		"troughs", len(out.Summary.TurningPoints.Troughs),
		"shocks", len(out.Summary.Shocks.Intervals),
	)
	return out, nil
}
