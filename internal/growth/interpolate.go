package growth

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"macrocycle/internal/quarter"
)

// Annual is one observation of an annual series.
type Annual struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// InterpolateQuarterly maps an annual series onto a quarterly axis. Each annual
// value is anchored at Q1 of its year and quarters in between are linearly
// interpolated. The result has exactly one value per axis quarter; quarters
// before the first or after the last finite anchor are NaN.
func InterpolateQuarterly(annual []Annual, axis []quarter.Label) []float64 {
	out := make([]float64, len(axis))
	for i := range out {
		out[i] = math.NaN()
	}

	anchors := make([]Annual, 0, len(annual))
	for _, a := range annual {
		if !math.IsNaN(a.Value) && !math.IsInf(a.Value, 0) {
			anchors = append(anchors, a)
		}
	}
	if len(anchors) == 0 {
		return out
	}
	sort.SliceStable(anchors, func(i, j int) bool { return anchors[i].Year < anchors[j].Year })

	ordinal := func(year int) float64 {
		return float64(quarter.Label{Year: year, Quarter: 1}.Ordinal())
	}
	first := ordinal(anchors[0].Year)
	last := ordinal(anchors[len(anchors)-1].Year)

	for i, l := range axis {
		q := float64(l.Ordinal())
		if q < first || q > last {
			continue
		}
		k := sort.Search(len(anchors), func(j int) bool { return ordinal(anchors[j].Year) >= q })
		if ordinal(anchors[k].Year) == q {
			out[i] = anchors[k].Value
			continue
		}
		lo, hi := anchors[k-1], anchors[k]
		x0, x1 := ordinal(lo.Year), ordinal(hi.Year)
		out[i] = lo.Value + (hi.Value-lo.Value)*(q-x0)/(x1-x0)
	}
	return out
}

var yearHeader = regexp.MustCompile(`^\s*(\d{4})(?:\.0+)?\s*$`)

// ParseAnnual pairs year headers with their values. Headers that are not a
// four-digit year are skipped, as are repeats of an earlier year.
func ParseAnnual(headers []string, values []float64) []Annual {
	seen := make(map[int]bool, len(headers))
	out := make([]Annual, 0, len(headers))
	for i, h := range headers {
		if i >= len(values) {
			break
		}
		m := yearHeader.FindStringSubmatch(h)
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[1])
		if err != nil || seen[year] {
			continue
		}
		seen[year] = true
		out = append(out, Annual{Year: year, Value: values[i]})
	}
	return out
}
