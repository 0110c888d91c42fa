package deflate

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	apperrors "macrocycle/internal/errors"
)

const (
	// BaseLevel is the value a rebased deflator takes at the base period.
	BaseLevel = 100.0
	// Epsilon floors the deflator ratio so a zero deflator never divides.
	Epsilon = 1e-12
)

// Rebase rescales deflator so that deflator[base] becomes 100.
func Rebase(deflator []float64, base int) ([]float64, error) {
	if base < 0 || base >= len(deflator) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("base index %d outside deflator of length %d", base, len(deflator)), nil)
	}

	anchor := deflator[base]
	if math.IsNaN(anchor) || math.IsInf(anchor, 0) || anchor == 0 {
		return nil, &apperrors.InvalidBaseValueError{Index: base, Value: anchor}
	}

	rebased := make([]float64, len(deflator))
	for i, v := range deflator {
		rebased[i] = v / anchor * BaseLevel
	}
	return rebased, nil
}

// Deflate converts a nominal series into real terms: nominal / (rebased/100).
// NaN in either input propagates as NaN.
func Deflate(nominal, rebased []float64) ([]float64, error) {
	if len(nominal) != len(rebased) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("nominal series has %d values, deflator has %d", len(nominal), len(rebased)), nil)
	}

	out := make([]float64, len(nominal))
	for i := range nominal {
		if math.IsNaN(nominal[i]) || math.IsNaN(rebased[i]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = nominal[i] / math.Max(rebased[i]/BaseLevel, Epsilon)
	}
	return out, nil
}

// Investment aggregates gross fixed capital formation and the change in inventories.
// A nil inventories slice contributes zero.
func Investment(gfcf, inventories []float64) []float64 {
	out := make([]float64, len(gfcf))
	copy(out, gfcf)
	if inventories == nil {
		return out
	}
	for i := range out {
		if i >= len(inventories) {
			out[i] = math.NaN()
			continue
		}
		out[i] += inventories[i]
	}
	return out
}

// ValidMask reports, per position, whether every series holds a finite value.
func ValidMask(series ...[]float64) []bool {
	if len(series) == 0 {
		return nil
	}
	n := len(series[0])
	mask := make([]bool, n)
	for i := 0; i < n; i++ {
		ok := true
		for _, s := range series {
			if i >= len(s) || math.IsNaN(s[i]) || math.IsInf(s[i], 0) {
				ok = false
				break
			}
		}
		mask[i] = ok
	}
	return mask
}

// Select returns the values whose mask entry is true, in order.
func Select[T any](values []T, mask []bool) []T {
	out := make([]T, 0, len(values))
	for i, v := range values {
		if i < len(mask) && mask[i] {
			out = append(out, v)
		}
	}
	return out
}

// Inputs are the nominal series aligned to one chronological axis.
type Inputs struct {
	Deflator    []float64
	GDP         []float64
	Consumption []float64
	GFCF        []float64
	// Inventories is nil when the source table has no change-in-inventories row.
	Inventories []float64
	Base        int
	BaseLabel   string
}

// RealSeries holds the rebased deflator and the real aggregates, all on the input axis.
type RealSeries struct {
	Rebased            []float64
	GDP                []float64
	Consumption        []float64
	Investment         []float64
	InventoriesMissing bool
}

// Constructor turns nominal national-accounts series into real ones.
type Constructor struct {
	logger *slog.Logger
}

// NewConstructor creates a constructor
func NewConstructor(logger *slog.Logger) *Constructor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Constructor{logger: logger}
}

// Build rebases the deflator at in.Base and deflates GDP, consumption and investment.
func (c *Constructor) Build(ctx context.Context, in Inputs) (*RealSeries, error) {
	rebased, err := Rebase(in.Deflator, in.Base)
	if err != nil {
		if baseErr, ok := err.(*apperrors.InvalidBaseValueError); ok {
			baseErr.Label = in.BaseLabel
		}
		return nil, err
	}

	out := &RealSeries{Rebased: rebased, InventoriesMissing: in.Inventories == nil}
	if out.InventoriesMissing {
		c.logger.WarnContext(ctx, "change in inventories not found, real investment uses fixed capital formation only",
			"degraded_accuracy", true)
	}

	if out.GDP, err = Deflate(in.GDP, rebased); err != nil {
		return nil, fmt.Errorf("deflate gdp: %w", err)
	}
	if out.Consumption, err = Deflate(in.Consumption, rebased); err != nil {
		return nil, fmt.Errorf("deflate consumption: %w", err)
	}
	if out.Investment, err = Deflate(Investment(in.GFCF, in.Inventories), rebased); err != nil {
		return nil, fmt.Errorf("deflate investment: %w", err)
	}

	c.logger.DebugContext(ctx, "real series constructed",
		"observations", len(rebased),
		"base_index", in.Base,
		"base_label", in.BaseLabel,
	)
	return out, nil
}
