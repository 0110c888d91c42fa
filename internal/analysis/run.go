package analysis

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"macrocycle/internal/infrastructure"
	"macrocycle/internal/table"
)

// Task names
const (
	TaskBusinessCycle = "business_cycle"
	TaskGrowth        = "growth"
	TaskProductivity  = "productivity"
)

// Inputs are the cleaned tables of one run. Annual is optional.
type Inputs struct {
	Quarterly *table.Table
	Annual    *table.Table
}

// Results collects the outcome of every task of a run. A task that failed has
// a nil result and an entry in Errors; a task that was not attempted has
// neither.
type Results struct {
	RunID         string
	BusinessCycle *BusinessCycle
	Growth        *GrowthResult
	Productivity  *ProductivityResult
	Errors        map[string]error
	Attempted     []string
}

// AllFailed reports whether every attempted task failed.
func (r *Results) AllFailed() bool {
	return len(r.Attempted) > 0 && len(r.Errors) == len(r.Attempted)
}

// RunAll runs the business-cycle, growth and (when an annual table is given)
// productivity analyses concurrently. Tasks are isolated: one failing never
// cancels or blocks another.
func (a *Analyzer) RunAll(ctx context.Context, in Inputs, opts Options) *Results {
	ctx = infrastructure.EnsureTraceID(ctx)
	opts = opts.withDefaults()

	res := &Results{
		RunID:     infrastructure.GetTraceID(ctx),
		Errors:    make(map[string]error),
		Attempted: []string{TaskBusinessCycle, TaskGrowth},
	}
	if in.Annual != nil {
		res.Attempted = append(res.Attempted, TaskProductivity)
	}

	ctx, span := a.tracer.Start(ctx, "analysis_run")
	defer span.End()

	var cycleErr, growthErr, prodErr error
	var g errgroup.Group

	g.Go(func() error {
		cycleErr = a.task(ctx, TaskBusinessCycle, func(ctx context.Context) (err error) {
			res.BusinessCycle, err = a.BusinessCycle(ctx, in.Quarterly, opts)
			return err
		})
		return nil
	})
	g.Go(func() error {
		growthErr = a.task(ctx, TaskGrowth, func(ctx context.Context) (err error) {
			res.Growth, err = a.Growth(ctx, in.Quarterly, opts)
			return err
		})
		return nil
	})
	if in.Annual != nil {
		g.Go(func() error {
			prodErr = a.task(ctx, TaskProductivity, func(ctx context.Context) (err error) {
				res.Productivity, err = a.Productivity(ctx, in.Quarterly, in.Annual, opts)
				return err
			})
			return nil
		})
	}
	_ = g.Wait()

	for task, err := range map[string]error{
		TaskBusinessCycle: cycleErr,
		TaskGrowth:        growthErr,
		TaskProductivity:  prodErr,
	} {
		if err != nil {
			res.Errors[task] = err
		}
	}
	return res
}

// task runs one analysis in its own span, logging and recording the outcome.
func (a *Analyzer) task(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := a.tracer.Start(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)
	a.metrics.RecordRun(ctx, name, duration, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		a.logger.ErrorContext(ctx, "analysis task failed",
			slog.String("task", name),
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
		return err
	}
	a.logger.InfoContext(ctx, "analysis task completed",
		slog.String("task", name),
		slog.Duration("duration", duration))
	return nil
}
