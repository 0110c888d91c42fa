// Package hpfilter implements the Hodrick–Prescott trend/cycle decomposition.
//
// The trend τ of a series y minimises
//
//	Σ (y_t − τ_t)² + λ Σ ((τ_{t+1} − τ_t) − (τ_t − τ_{t−1}))²
//
// which is the solution of (I + λDᵀD) τ = y with D the second-difference
// operator. The system matrix is symmetric positive definite and pentadiagonal,
// so it is stored as a band matrix and solved with a band Cholesky factorisation.
package hpfilter

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	apperrors "macrocycle/internal/errors"
)

const (
	// QuarterlyLambda is the conventional smoothing parameter for quarterly data.
	QuarterlyLambda = 1600.0
	// MinObservations is the shortest series that is actually filtered.
	MinObservations = 6
	// LogFloor keeps log levels finite for zero or negative inputs.
	LogFloor = 1e-12

	bandwidth = 2
)

// secondDifference holds the coefficients of one row of D.
var secondDifference = [3]float64{1, -2, 1}

// Decomposition is the trend/cycle split of one series.
type Decomposition struct {
	Trend []float64
	Cycle []float64
}

// Decompose splits y into trend and cycle with smoothing parameter lambda.
//
// Series shorter than MinObservations are returned unfiltered: the trend is a
// copy of y and the cycle is zero. y must not contain NaN; callers pass the
// mutually valid subsequence of their observations.
func Decompose(y []float64, lambda float64) (Decomposition, error) {
	if math.IsNaN(lambda) || lambda < 0 {
		return Decomposition{}, apperrors.NewValidationError(
			fmt.Sprintf("hp filter: lambda must be non-negative, got %v", lambda), nil)
	}

	n := len(y)
	if n < MinObservations {
		trend := make([]float64, n)
		copy(trend, y)
		return Decomposition{Trend: trend, Cycle: make([]float64, n)}, nil
	}

	var chol mat.BandCholesky
	if ok := chol.Factorize(systemMatrix(n, lambda)); !ok {
		return Decomposition{}, fmt.Errorf("hp filter: system matrix for %d observations is not positive definite", n)
	}

	rhs := make([]float64, n)
	copy(rhs, y)
	var tau mat.VecDense
	if err := chol.SolveVecTo(&tau, mat.NewVecDense(n, rhs)); err != nil {
		return Decomposition{}, fmt.Errorf("hp filter: solve: %w", err)
	}

	out := Decomposition{Trend: make([]float64, n), Cycle: make([]float64, n)}
	for i := range y {
		out.Trend[i] = tau.AtVec(i)
		out.Cycle[i] = y[i] - out.Trend[i]
	}
	return out, nil
}

// systemMatrix assembles I + λDᵀD by accumulating the outer product of each row of D.
func systemMatrix(n int, lambda float64) *mat.SymBandDense {
	a := mat.NewSymBandDense(n, bandwidth, nil)
	for i := 0; i < n; i++ {
		a.SetSymBand(i, i, 1)
	}
	for k := 0; k+2 < n; k++ {
		for p, cp := range secondDifference {
			for q := p; q < len(secondDifference); q++ {
				i, j := k+p, k+q
				a.SetSymBand(i, j, a.At(i, j)+lambda*cp*secondDifference[q])
			}
		}
	}
	return a
}

// LogDecomposition is the filter applied to log levels, with the cycle in percent.
type LogDecomposition struct {
	LogLevel []float64
	Trend    []float64
	// CyclePct is 100 × the log cycle, approximately the percent deviation from trend.
	CyclePct []float64
}

// LogDecompose floors levels at LogFloor, takes natural logs and filters them.
func LogDecompose(levels []float64, lambda float64) (LogDecomposition, error) {
	logs := make([]float64, len(levels))
	for i, v := range levels {
		logs[i] = math.Log(math.Max(v, LogFloor))
	}

	d, err := Decompose(logs, lambda)
	if err != nil {
		return LogDecomposition{}, err
	}

	pct := make([]float64, len(d.Cycle))
	for i, c := range d.Cycle {
		pct[i] = 100 * c
	}
	return LogDecomposition{LogLevel: logs, Trend: d.Trend, CyclePct: pct}, nil
}

// Smoothness is the sum of squared second differences of x.
func Smoothness(x []float64) float64 {
	var sum float64
	for t := 1; t+1 < len(x); t++ {
		d := x[t+1] - 2*x[t] + x[t-1]
		sum += d * d
	}
	return sum
}
