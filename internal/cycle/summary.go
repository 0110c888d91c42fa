package cycle

// Summary is the derived-statistics output of one business-cycle run.
type Summary struct {
	Statistics    []Statistics  `json:"statistics"`
	TurningPoints TurningPoints `json:"turning_points"`
	Shocks        ShockBands    `json:"shocks"`
}

// Summarize computes volatility, comovement, GDP turning points and GDP shock bands.
// Thresholds are derived from the unrounded GDP cycle standard deviation.
func Summarize(gdp, consumption, investment []float64, prominenceFactor, shockMultiplier float64) Summary {
	stats := Compute(gdp, consumption, investment)
	sigma := stats[0].StdDev
	return Summary{
		Statistics:    stats,
		TurningPoints: DetectTurningPoints(gdp, prominenceFactor),
		Shocks:        ClassifyShocks(gdp, sigma, shockMultiplier),
	}
}

// RoundedStatistics returns the statistics table rounded for display.
func (s Summary) RoundedStatistics() []Statistics {
	out := make([]Statistics, len(s.Statistics))
	for i, st := range s.Statistics {
		out[i] = st.Rounded()
	}
	return out
}
