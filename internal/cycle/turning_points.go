package cycle

import (
	"math"
	"sort"
)

// ExtremumKind distinguishes peaks from troughs
type ExtremumKind string

const (
	Peak   ExtremumKind = "peak"
	Trough ExtremumKind = "trough"
)

// DefaultProminenceFactor scales the GDP cycle standard deviation into the
// minimum prominence a turning point must reach.
const DefaultProminenceFactor = 0.8

// Extremum is one detected turning point.
type Extremum struct {
	Index      int          `json:"index"`
	Value      float64      `json:"value"`
	Prominence float64      `json:"prominence"`
	Kind       ExtremumKind `json:"kind"`
}

// FindPeaks returns the local maxima of x whose prominence is at least minProminence.
//
// A run of equal samples forms a single candidate reported at its earliest index.
// The first and last samples are never peaks. Prominence is the height of the peak
// above the higher of the two bases, where each base is the lowest sample reached
// before the series rises strictly above the peak (or ends) on that side.
func FindPeaks(x []float64, minProminence float64) []Extremum {
	var out []Extremum
	n := len(x)
	i := 1
	for i < n-1 {
		if math.IsNaN(x[i]) || !(x[i] > x[i-1]) {
			i++
			continue
		}
		// extend across a plateau of equal values
		j := i
		for j+1 < n && x[j+1] == x[i] {
			j++
		}
		if j+1 < n && x[j+1] < x[i] {
			prom := prominence(x, i, j)
			if prom >= minProminence {
				out = append(out, Extremum{Index: i, Value: x[i], Prominence: prom, Kind: Peak})
			}
		}
		i = j + 1
	}
	return out
}

// FindTroughs returns the local minima of x whose prominence is at least minProminence.
func FindTroughs(x []float64, minProminence float64) []Extremum {
	neg := make([]float64, len(x))
	for i, v := range x {
		neg[i] = -v
	}
	troughs := FindPeaks(neg, minProminence)
	for k := range troughs {
		troughs[k].Value = x[troughs[k].Index]
		troughs[k].Kind = Trough
	}
	return troughs
}

// prominence of the plateau x[start..end].
func prominence(x []float64, start, end int) float64 {
	height := x[start]

	leftMin := height
	for k := start - 1; k >= 0 && !(x[k] > height); k-- {
		if x[k] < leftMin {
			leftMin = x[k]
		}
	}

	rightMin := height
	for k := end + 1; k < len(x) && !(x[k] > height); k++ {
		if x[k] < rightMin {
			rightMin = x[k]
		}
	}

	return height - math.Max(leftMin, rightMin)
}

// TurningPoints are the significant peaks and troughs of a cycle.
type TurningPoints struct {
	MinProminence float64    `json:"min_prominence"`
	Peaks         []Extremum `json:"peaks"`
	Troughs       []Extremum `json:"troughs"`
}

// All returns peaks and troughs merged in index order.
func (tp TurningPoints) All() []Extremum {
	all := make([]Extremum, 0, len(tp.Peaks)+len(tp.Troughs))
	all = append(all, tp.Peaks...)
	all = append(all, tp.Troughs...)
	sort.SliceStable(all, func(a, b int) bool { return all[a].Index < all[b].Index })
	return all
}

// DetectTurningPoints finds turning points of cycle whose prominence reaches
// factor × StdDev(cycle). The unrounded standard deviation is used.
func DetectTurningPoints(cycle []float64, factor float64) TurningPoints {
	sigma := StdDev(cycle)
	if math.IsNaN(sigma) {
		return TurningPoints{MinProminence: math.NaN()}
	}
	minProm := factor * sigma
	return TurningPoints{
		MinProminence: minProm,
		Peaks:         FindPeaks(cycle, minProm),
		Troughs:       FindTroughs(cycle, minProm),
	}
}
