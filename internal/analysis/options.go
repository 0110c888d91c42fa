package analysis

import (
	"log/slog"

	"macrocycle/internal/config"
	"macrocycle/internal/cycle"
	"macrocycle/internal/hpfilter"
	"macrocycle/internal/quarter"
	"macrocycle/internal/smooth"
	"macrocycle/internal/table"
)

// DefaultBaseQuarter is the reference quarter used when none is configured.
const DefaultBaseQuarter = "1990 1Q"

// Options carries every tunable of a run explicitly. Nothing is read from
// package state: callers pass Options at each entry point.
type Options struct {
	BaseQuarter      string
	Lambda           float64
	ProminenceFactor float64
	ShockMultiplier  float64
	Smoother         smooth.Smoother
	Patterns         []quarter.Pattern
	Matchers         []table.SeriesMatcher
	AnnualMatchers   []table.SeriesMatcher
}

// DefaultOptions returns the conventional settings: base 1990 1Q, λ = 1600,
// 0.8σ prominence, 2σ shocks and a 5-point quadratic Savitzky–Golay smoother.
func DefaultOptions() Options {
	return Options{
		BaseQuarter:      DefaultBaseQuarter,
		Lambda:           hpfilter.QuarterlyLambda,
		ProminenceFactor: cycle.DefaultProminenceFactor,
		ShockMultiplier:  cycle.DefaultShockMultiplier,
		Smoother:         smooth.New(smooth.MethodAuto, 5, 2, nil),
		Patterns:         quarter.DefaultPatterns(),
		Matchers:         table.DefaultQuarterlyMatchers(),
		AnnualMatchers:   table.DefaultAnnualMatchers(),
	}
}

// OptionsFromConfig builds Options from the analysis section of the configuration.
// The smoothing strategy is selected here, once.
func OptionsFromConfig(cfg config.AnalysisConfig, logger *slog.Logger) Options {
	opts := DefaultOptions()
	opts.BaseQuarter = cfg.BaseQuarter
	opts.ProminenceFactor = cfg.ProminenceFactor
	opts.ShockMultiplier = cfg.ShockMultiplier
	opts.Smoother = smooth.New(cfg.SmoothingMethod, cfg.SmoothingWindow, cfg.SmoothingOrder, logger)
	return opts
}

// withDefaults fills zero-valued fields so partially built Options stay usable.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BaseQuarter == "" {
		o.BaseQuarter = d.BaseQuarter
	}
	if o.Lambda == 0 {
		o.Lambda = d.Lambda
	}
	if o.ProminenceFactor == 0 {
		o.ProminenceFactor = d.ProminenceFactor
	}
	if o.ShockMultiplier == 0 {
		o.ShockMultiplier = d.ShockMultiplier
	}
	if o.Smoother == nil {
		o.Smoother = d.Smoother
	}
	if o.Patterns == nil {
		o.Patterns = d.Patterns
	}
	if o.Matchers == nil {
		o.Matchers = d.Matchers
	}
	if o.AnnualMatchers == nil {
		o.AnnualMatchers = d.AnnualMatchers
	}
	return o
}
