package report

import (
	"math"

	"macrocycle/internal/analysis"
)

// ChartInput is everything a chart renderer needs, already computed: the
// cycle and smoothed series, the ±threshold shock bands, the shock intervals
// and the turning points. The renderer owns file paths and formats.
type ChartInput struct {
	Quarters    []string   `json:"quarters"`
	GDP         []Number   `json:"gdp_cycle_pct"`
	Consumption []Number   `json:"consumption_cycle_pct"`
	Investment  []Number   `json:"investment_cycle_pct"`
	SmoothedGDP []Number   `json:"smoothed_gdp_cycle_pct"`
	Smoother    string     `json:"smoother"`
	UpperBand   Number     `json:"upper_band_pct"`
	LowerBand   Number     `json:"lower_band_pct"`
	Shocks      []ShockRow `json:"shocks"`
	Peaks       []int      `json:"peaks"`
	Troughs     []int      `json:"troughs"`
}

// ChartInput returns the chart collaborator's input. It is empty when the
// business-cycle task did not produce a result.
func (r *Report) ChartInput() ChartInput {
	return r.chart
}

func chartInput(bc *analysis.BusinessCycle, labels []string) ChartInput {
	in := ChartInput{
		Quarters:    labels,
		GDP:         numbers(bc.Cycle.GDP),
		Consumption: numbers(bc.Cycle.Consumption),
		Investment:  numbers(bc.Cycle.Investment),
		SmoothedGDP: numbers(bc.Smoothed.GDP),
		Smoother:    bc.Smoother,
		UpperBand:   Number(math.Abs(bc.Summary.Shocks.Threshold)),
		LowerBand:   Number(-math.Abs(bc.Summary.Shocks.Threshold)),
	}
	for _, s := range bc.Summary.Shocks.Intervals {
		in.Shocks = append(in.Shocks, ShockRow{
			Start:     labels[s.Start],
			End:       labels[s.End],
			Quarters:  s.Len(),
			Direction: direction(s),
		})
	}
	for _, p := range bc.Summary.TurningPoints.Peaks {
		in.Peaks = append(in.Peaks, p.Index)
	}
	for _, t := range bc.Summary.TurningPoints.Troughs {
		in.Troughs = append(in.Troughs, t.Index)
	}
	return in
}
