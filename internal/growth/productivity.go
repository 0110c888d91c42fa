package growth

import "math"

// Productivity holds output per head of population and per employed person.
type Productivity struct {
	PerCapita []float64 `json:"per_capita"`
	PerWorker []float64 `json:"per_worker"`
}

// ComputeProductivity divides real output by population and employment
// position by position. A missing or non-positive denominator yields NaN.
func ComputeProductivity(realGDP, population, employment []float64) Productivity {
	return Productivity{
		PerCapita: ratio(realGDP, population),
		PerWorker: ratio(realGDP, employment),
	}
}

func ratio(num, den []float64) []float64 {
	out := make([]float64, len(num))
	for i := range num {
		if i >= len(den) || !positive(den[i]) || math.IsNaN(num[i]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = num[i] / den[i]
	}
	return out
}
