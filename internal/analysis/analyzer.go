package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"macrocycle/internal/deflate"
	"macrocycle/internal/infrastructure"
	"macrocycle/internal/quarter"
	"macrocycle/internal/table"
)

// Stage names used for spans and the stage duration metric.
const (
	StageLookup   = "series_lookup"
	StageIndex    = "quarter_index"
	StageBase     = "base_quarter"
	StageDeflate  = "deflate"
	StageFilter   = "valid_subsequence"
	StageHP       = "hp_filter"
	StageStats    = "cycle_statistics"
	StageSmooth   = "smoothing"
	StageGrowth   = "growth_rates"
	StageInterp   = "annual_interpolation"
	StageProdCalc = "productivity"
)

// Analyzer runs the analyses over cleaned tables. It holds no per-run state,
// so one Analyzer may serve concurrent runs.
type Analyzer struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.Metrics
}

// NewAnalyzer creates an analyzer. metrics may be nil.
func NewAnalyzer(logger *slog.Logger, metrics *infrastructure.Metrics) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		logger:  infrastructure.WithComponent(logger, "analysis"),
		tracer:  otel.Tracer(infrastructure.InstrumentationName),
		metrics: metrics,
	}
}

// stage runs fn inside a span and records its duration.
func (a *Analyzer) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := a.tracer.Start(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	a.metrics.RecordStage(ctx, name, time.Since(start))
	if err != nil {
		infrastructure.RecordError(ctx, err)
		a.logger.DebugContext(ctx, "stage failed", "stage", name, "error", err)
	}
	return err
}

// compute runs a stage that cannot fail.
func (a *Analyzer) compute(ctx context.Context, name string, fn func()) {
	_, span := a.tracer.Start(ctx, name)
	defer span.End()

	start := time.Now()
	fn()
	a.metrics.RecordStage(ctx, name, time.Since(start))
}

// prepared is the real-terms view of a quarterly table on its sorted time axis.
type prepared struct {
	index     *quarter.Index
	axis      []quarter.Label
	base      int
	baseLabel quarter.Label
	present   map[string]bool
	real      *deflate.RealSeries
}

// prepare locates the series, builds the time axis, resolves the base quarter
// and deflates. Series lookup happens first so a missing row fails before any
// numeric work.
func (a *Analyzer) prepare(ctx context.Context, t *table.Table, opts Options, matchers []table.SeriesMatcher) (*prepared, error) {
	if t == nil {
		return nil, fmt.Errorf("no quarterly table supplied")
	}

	var rows map[string]table.Row
	err := a.stage(ctx, StageLookup, func(context.Context) error {
		var err error
		rows, err = t.Require(matchers...)
		return err
	})
	if err != nil {
		return nil, err
	}

	p := &prepared{present: make(map[string]bool, len(rows))}
	for series := range rows {
		p.present[series] = true
	}

	err = a.stage(ctx, StageIndex, func(context.Context) error {
		idx, err := quarter.BuildIndex(t.Columns(), opts.Patterns)
		if err != nil {
			return err
		}
		p.index = idx
		p.axis = idx.Sorted()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if invalid := p.index.Invalid(); len(invalid) > 0 {
		a.logger.InfoContext(ctx, "ignoring columns that are not quarter labels",
			"count", len(invalid), "headers", invalid)
	}

	err = a.stage(ctx, StageBase, func(context.Context) error {
		pos, err := p.index.ResolveBase(opts.BaseQuarter, opts.Patterns)
		if err != nil {
			return err
		}
		p.base = pos
		p.baseLabel = p.axis[pos]
		return nil
	})
	if err != nil {
		return nil, err
	}

	values := func(series string) []float64 {
		row, ok := rows[series]
		if !ok {
			return nil
		}
		return t.Values(row, p.index.Order)
	}
	orNaN := func(x []float64) []float64 {
		if x != nil {
			return x
		}
		out := make([]float64, len(p.axis))
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	err = a.stage(ctx, StageDeflate, func(ctx context.Context) error {
		rs, err := deflate.NewConstructor(a.logger).Build(ctx, deflate.Inputs{
			Deflator:    values(table.SeriesDeflator),
			GDP:         values(table.SeriesGDP),
			Consumption: orNaN(values(table.SeriesConsumption)),
			GFCF:        orNaN(values(table.SeriesInvestment)),
			Inventories: values(table.SeriesInventories),
			Base:        p.base,
			BaseLabel:   p.baseLabel.Canonical(),
		})
		if err != nil {
			return err
		}
		p.real = rs
		return nil
	})
	if err != nil {
		return nil, err
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("quarters", len(p.axis)),
		attribute.String("base_quarter", p.baseLabel.Canonical()),
	)
	return p, nil
}

// optional returns matchers with every series except keep marked optional.
func optional(matchers []table.SeriesMatcher, keep ...string) []table.SeriesMatcher {
	out := make([]table.SeriesMatcher, len(matchers))
	for i, m := range matchers {
		m.Optional = true
		for _, k := range keep {
			if m.Series == k {
				m.Optional = false
			}
		}
		out[i] = m
	}
	return out
}
