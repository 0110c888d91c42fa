package cycle

import "math"

// DefaultShockMultiplier is the number of standard deviations that marks a shock.
const DefaultShockMultiplier = 2.0

// Shock is a contiguous run of quarters beyond the shock threshold.
// Start and End are inclusive positions in the cycle series.
type Shock struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Sign  int `json:"sign"`
}

// Len returns the number of quarters in the interval
func (s Shock) Len() int {
	return s.End - s.Start + 1
}

// ShockBands are the classified quarters of one cycle series.
type ShockBands struct {
	Threshold float64 `json:"threshold"`
	// Mask holds +1 for a positive shock, -1 for a negative shock and 0 otherwise.
	Mask      []int   `json:"mask"`
	Intervals []Shock `json:"intervals"`
}

// ClassifyShocks marks x[i] ≥ k·sigma as a positive shock and x[i] ≤ −k·sigma as a
// negative one, and groups consecutive equal marks into intervals.
func ClassifyShocks(x []float64, sigma, k float64) ShockBands {
	threshold := k * sigma
	bands := ShockBands{Threshold: threshold, Mask: make([]int, len(x))}
	// a zero threshold would mark every quarter of a constant cycle
	if math.IsNaN(threshold) || threshold <= 0 {
		return bands
	}

	for i, v := range x {
		switch {
		case v >= threshold:
			bands.Mask[i] = 1
		case v <= -threshold:
			bands.Mask[i] = -1
		}
	}

	for i := 0; i < len(bands.Mask); {
		sign := bands.Mask[i]
		if sign == 0 {
			i++
			continue
		}
		j := i
		for j+1 < len(bands.Mask) && bands.Mask[j+1] == sign {
			j++
		}
		bands.Intervals = append(bands.Intervals, Shock{Start: i, End: j, Sign: sign})
		i = j + 1
	}
	return bands
}
