// Package smooth provides presentation smoothing for cycle series.
//
// The output of a Smoother is cosmetic: it is only ever written to separate
// chart columns and never feeds statistics or the trend/cycle split.
package smooth

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Method names accepted by New.
const (
	MethodAuto          = "auto"
	MethodSavitzkyGolay = "savgol"
	MethodMovingAverage = "moving_average"
)

// Smoother maps a series to a smoothed series of the same length.
type Smoother interface {
	Name() string
	Window() int
	Smooth(x []float64) []float64
}

// NormalizeWindow coerces w to the nearest odd integer that is at least 3.
// Even widths round up.
func NormalizeWindow(w int) int {
	if w < 3 {
		return 3
	}
	if w%2 == 0 {
		return w + 1
	}
	return w
}

// New selects the smoothing strategy once. Savitzky–Golay is used when requested
// (or in auto mode) and its coefficients can be computed for the window and
// order; otherwise the centered moving average is used.
func New(method string, window, order int, logger *slog.Logger) Smoother {
	if logger == nil {
		logger = slog.Default()
	}
	window = NormalizeWindow(window)

	switch strings.ToLower(method) {
	case MethodMovingAverage:
		return NewMovingAverage(window)
	case MethodSavitzkyGolay, MethodAuto, "":
		sg, err := NewSavitzkyGolay(window, order)
		if err == nil {
			return sg
		}
		logger.Info("savitzky-golay unavailable, using moving average",
			"window", window,
			"order", order,
			"reason", err.Error(),
		)
		return NewMovingAverage(window)
	default:
		logger.Warn("unknown smoothing method, using moving average", "method", method)
		return NewMovingAverage(window)
	}
}

// MovingAverage is a centered moving average truncated at the edges.
type MovingAverage struct {
	window int
}

// NewMovingAverage creates a moving average with a normalised window
func NewMovingAverage(window int) *MovingAverage {
	return &MovingAverage{window: NormalizeWindow(window)}
}

func (m *MovingAverage) Name() string { return MethodMovingAverage }
func (m *MovingAverage) Window() int  { return m.window }

// Smooth averages each point with up to window/2 neighbours on each side.
// Near the edges fewer neighbours are used; NaN neighbours are skipped.
func (m *MovingAverage) Smooth(x []float64) []float64 {
	half := m.window / 2
	out := make([]float64, len(x))
	for i := range x {
		lo, hi := i-half, i+half
		if lo < 0 {
			lo = 0
		}
		if hi > len(x)-1 {
			hi = len(x) - 1
		}
		var sum float64
		var n int
		for k := lo; k <= hi; k++ {
			if math.IsNaN(x[k]) {
				continue
			}
			sum += x[k]
			n++
		}
		if n == 0 {
			out[i] = x[i]
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// SavitzkyGolay is a local polynomial regression smoother.
type SavitzkyGolay struct {
	window int
	order  int
	// weights[p] evaluates the fitted polynomial at offset p-half of the window.
	weights [][]float64
}

// NewSavitzkyGolay precomputes the convolution weights for every position in the window.
func NewSavitzkyGolay(window, order int) (*SavitzkyGolay, error) {
	window = NormalizeWindow(window)
	if order < 0 || order >= window {
		return nil, fmt.Errorf("polynomial order %d must be in [0, %d)", order, window)
	}

	half := window / 2
	// design matrix: one row per window offset, one column per power
	a := mat.NewDense(window, order+1, nil)
	for r := 0; r < window; r++ {
		z := float64(r - half)
		v := 1.0
		for c := 0; c <= order; c++ {
			a.Set(r, c, v)
			v *= z
		}
	}

	// pinv = (AᵀA)⁻¹Aᵀ maps window samples to polynomial coefficients
	var ata mat.Dense
	ata.Mul(a.T(), a)
	var pinv mat.Dense
	if err := pinv.Solve(&ata, a.T()); err != nil {
		return nil, fmt.Errorf("savitzky-golay normal equations: %w", err)
	}

	weights := make([][]float64, window)
	for p := 0; p < window; p++ {
		row := make([]float64, window)
		z := float64(p - half)
		for r := 0; r < window; r++ {
			v, acc := 1.0, 0.0
			for c := 0; c <= order; c++ {
				acc += v * pinv.At(c, r)
				v *= z
			}
			row[r] = acc
		}
		weights[p] = row
	}

	return &SavitzkyGolay{window: window, order: order, weights: weights}, nil
}

func (s *SavitzkyGolay) Name() string { return MethodSavitzkyGolay }
func (s *SavitzkyGolay) Window() int  { return s.window }

// Order returns the polynomial degree
func (s *SavitzkyGolay) Order() int { return s.order }

// Smooth applies the filter. Interior points use the centered window; the first
// and last half-window points are evaluated on the polynomial fitted to the
// first or last full window. Series shorter than the window are averaged instead.
func (s *SavitzkyGolay) Smooth(x []float64) []float64 {
	n := len(x)
	if n < s.window {
		return NewMovingAverage(s.window).Smooth(x)
	}

	half := s.window / 2
	out := make([]float64, n)
	apply := func(start, pos int) float64 {
		var acc float64
		for r, w := range s.weights[pos] {
			acc += w * x[start+r]
		}
		return acc
	}

	for i := 0; i < n; i++ {
		switch {
		case i < half:
			out[i] = apply(0, i)
		case i >= n-half:
			out[i] = apply(n-s.window, i-(n-s.window))
		default:
			out[i] = apply(i-half, half)
		}
	}
	return out
}
