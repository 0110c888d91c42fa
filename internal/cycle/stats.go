package cycle

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Series names used in the statistics table.
const (
	SeriesGDP         = "GDP"
	SeriesConsumption = "Consumption"
	SeriesInvestment  = "Investment"
)

// Statistics describes the volatility and comovement of one cycle series.
type Statistics struct {
	Series                   string  `json:"series"`
	StdDev                   float64 `json:"std_dev_cycle_pct"`
	CorrelationWithReference float64 `json:"correlation_with_gdp_cycle"`
	Observations             int     `json:"observations"`
}

// Rounded returns a copy with both statistics rounded to two decimals for display.
func (s Statistics) Rounded() Statistics {
	s.StdDev = Round2(s.StdDev)
	s.CorrelationWithReference = Round2(s.CorrelationWithReference)
	return s
}

// finite returns the finite values of x.
func finite(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// pairs returns the positions where both x and y are finite.
func pairs(x, y []float64) (xs, ys []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs = make([]float64, 0, n)
	ys = make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

// StdDev is the population standard deviation over the finite observations of x.
// It returns NaN when x has no finite observation.
func StdDev(x []float64) float64 {
	v := finite(x)
	if len(v) == 0 {
		return math.NaN()
	}
	_, variance := stat.PopMeanVariance(v, nil)
	return math.Sqrt(variance)
}

// Correlation is the Pearson correlation over the positions finite in both x and y.
// It returns NaN for fewer than two pairs or a constant series.
func Correlation(x, y []float64) float64 {
	xs, ys := pairs(x, y)
	if len(xs) < 2 {
		return math.NaN()
	}
	if StdDev(xs) == 0 || StdDev(ys) == 0 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// Compute returns the statistics table for the GDP, consumption and investment cycles,
// using GDP as the comovement reference. GDP's own correlation is exactly 1.
func Compute(gdp, consumption, investment []float64) []Statistics {
	return []Statistics{
		{
			Series:                   SeriesGDP,
			StdDev:                   StdDev(gdp),
			CorrelationWithReference: 1,
			Observations:             len(finite(gdp)),
		},
		{
			Series:                   SeriesConsumption,
			StdDev:                   StdDev(consumption),
			CorrelationWithReference: Correlation(gdp, consumption),
			Observations:             len(finite(consumption)),
		},
		{
			Series:                   SeriesInvestment,
			StdDev:                   StdDev(investment),
			CorrelationWithReference: Correlation(gdp, investment),
			Observations:             len(finite(investment)),
		},
	}
}

// Round2 rounds v half away from zero to two decimal places. NaN and ±Inf pass through.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
