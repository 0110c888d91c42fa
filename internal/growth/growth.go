// Package growth derives growth rates, annual-to-quarterly interpolation and
// labour productivity from real national-accounts series.
package growth

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Lags used for the usual quarterly growth rates.
const (
	LagQuarterOnQuarter = 1
	LagYearOnYear       = 4
)

// PercentChange returns 100·(x[t]/x[t-lag] − 1). The first lag points, and any
// point whose base is missing or non-positive, are NaN.
func PercentChange(x []float64, lag int) []float64 {
	out := make([]float64, len(x))
	for t := range x {
		if lag <= 0 || t < lag || !positive(x[t-lag]) || math.IsNaN(x[t]) {
			out[t] = math.NaN()
			continue
		}
		out[t] = (x[t]/x[t-lag] - 1) * 100
	}
	return out
}

// Annualized compounds quarter-on-quarter growth to an annual rate:
// ((x[t]/x[t-1])^4 − 1)·100.
func Annualized(x []float64) []float64 {
	out := make([]float64, len(x))
	for t := range x {
		if t == 0 || !positive(x[t-1]) || math.IsNaN(x[t]) {
			out[t] = math.NaN()
			continue
		}
		out[t] = (math.Pow(x[t]/x[t-1], 4) - 1) * 100
	}
	return out
}

// Average is the mean over the finite values of x, NaN when there are none.
func Average(x []float64) float64 {
	v := make([]float64, 0, len(x))
	for _, f := range x {
		if !math.IsNaN(f) && !math.IsInf(f, 0) {
			v = append(v, f)
		}
	}
	if len(v) == 0 {
		return math.NaN()
	}
	return floats.Sum(v) / float64(len(v))
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
