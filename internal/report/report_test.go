package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrocycle/internal/analysis"
	"macrocycle/internal/cycle"
	"macrocycle/internal/testutil"
)

func economy(t *testing.T) *analysis.BusinessCycle {
	t.Helper()
	a := analysis.NewAnalyzer(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	opts := analysis.DefaultOptions()
	bc, err := a.BusinessCycle(context.Background(), testutil.Economy(), opts)
	require.NoError(t, err)
	return bc
}

func TestNumber_MarshalJSON(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.5, "1.5"},
		{-0.25, "-0.25"},
		{0, "0"},
		{math.NaN(), "null"},
		{math.Inf(1), "null"},
		{math.Inf(-1), "null"},
	}
	for _, tt := range tests {
		data, err := json.Marshal(Number(tt.in))
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(data))
	}

	var n Number
	require.NoError(t, json.Unmarshal([]byte("null"), &n))
	assert.True(t, math.IsNaN(n.Float()))
	require.NoError(t, json.Unmarshal([]byte("2.75"), &n))
	assert.Equal(t, 2.75, n.Float())
}

func TestBuild(t *testing.T) {
	bc := economy(t)
	r := Build(bc)

	assert.Equal(t, "1990 1Q", r.BaseQuarter)
	require.Len(t, r.Cycle, len(bc.Quarters))
	require.Len(t, r.Trend, len(bc.Quarters))
	require.Len(t, r.Smoothed, len(bc.Quarters))

	assert.Equal(t, "1990 1Q", r.Cycle[0].Quarter)
	assert.Equal(t, "1999 4Q", r.Cycle[len(r.Cycle)-1].Quarter)
	for i := range r.Cycle {
		assert.Equal(t, bc.Cycle.GDP[i], r.Cycle[i].GDP.Float(), "cycle is exported at full precision")
		assert.Equal(t, bc.LogTrend.Investment[i], r.Trend[i].Investment.Float())
		assert.Equal(t, bc.Smoothed.Consumption[i], r.Smoothed[i].Consumption.Float())
	}

	require.Len(t, r.Statistics, 3)
	assert.Equal(t, cycle.SeriesGDP, r.Statistics[0].Series)
	for i, s := range r.Statistics {
		raw := bc.Summary.Statistics[i]
		assert.Equal(t, cycle.Round2(raw.StdDev), s.StdDevPct.Float())
		assert.Equal(t, cycle.Round2(raw.CorrelationWithReference), s.CorrelationWithGDP.Float())
	}

	tp := bc.Summary.TurningPoints
	require.Len(t, r.TurningPoints, len(tp.Peaks)+len(tp.Troughs))
	for i := 1; i < len(r.TurningPoints); i++ {
		assert.Less(t, r.TurningPoints[i-1].Quarter, r.TurningPoints[i].Quarter, "turning points are in time order")
	}
	for _, p := range r.TurningPoints {
		assert.Contains(t, []string{"peak", "trough"}, p.Kind)
	}

	assert.Equal(t, bc.Summary.Shocks.Threshold, r.ShockThreshold.Float())
	require.Len(t, r.Shocks, len(bc.Summary.Shocks.Intervals))
	for i, s := range r.Shocks {
		iv := bc.Summary.Shocks.Intervals[i]
		assert.Equal(t, bc.Quarters[iv.Start].Canonical(), s.Start)
		assert.Equal(t, bc.Quarters[iv.End].Canonical(), s.End)
		assert.Equal(t, iv.Len(), s.Quarters)
	}
}

func TestBuild_Nil(t *testing.T) {
	r := Build(nil)
	assert.Empty(t, r.Cycle)
	assert.Empty(t, r.ChartInput().Quarters)
}

func TestChartInput(t *testing.T) {
	bc := economy(t)
	in := Build(bc).ChartInput()

	require.Len(t, in.Quarters, len(bc.Quarters))
	require.Len(t, in.GDP, len(bc.Quarters))
	require.Len(t, in.SmoothedGDP, len(bc.Quarters))
	assert.Equal(t, bc.Smoother, in.Smoother)
	assert.Equal(t, -in.UpperBand, in.LowerBand)
	assert.InDelta(t, 2*bc.Summary.Statistics[0].StdDev, in.UpperBand.Float(), 1e-12)
	assert.Len(t, in.Peaks, len(bc.Summary.TurningPoints.Peaks))
	assert.Len(t, in.Troughs, len(bc.Summary.TurningPoints.Troughs))
}

func TestFromResults(t *testing.T) {
	a := analysis.NewAnalyzer(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	res := a.RunAll(context.Background(), analysis.Inputs{
		Quarterly: testutil.Economy(),
		Annual:    testutil.Population(10),
	}, analysis.DefaultOptions())
	require.Empty(t, res.Errors)

	r := FromResults(res)
	assert.Equal(t, res.RunID, r.RunID)
	assert.Len(t, r.Cycle, 40)
	assert.Len(t, r.Growth, 40*len(res.Growth.Series))
	assert.Equal(t, "1990 1Q", r.Growth[0].Quarter)
	assert.True(t, math.IsNaN(r.Growth[0].QoQ.Float()), "the first quarter has no predecessor")
	require.Len(t, r.Productivity, 40)
	assert.Equal(t, 10.0, r.Productivity[0].Population.Float())
	assert.Empty(t, r.Failures)

	data, err := json.Marshal(r)
	require.NoError(t, err, "NaN growth values must still encode")
	assert.Contains(t, string(data), `"qoq_pct":null`)
}

func TestFromResults_Failures(t *testing.T) {
	res := &analysis.Results{
		RunID: "run-1",
		Errors: map[string]error{
			analysis.TaskGrowth:        errors.New("boom"),
			analysis.TaskBusinessCycle: errors.New("bust"),
		},
		Attempted: []string{analysis.TaskBusinessCycle, analysis.TaskGrowth},
	}
	r := FromResults(res)
	assert.Equal(t, []string{analysis.TaskBusinessCycle, analysis.TaskGrowth}, r.FailedTasks())
	assert.Equal(t, "boom", r.Failures[analysis.TaskGrowth])
	assert.Empty(t, r.Cycle)
	assert.Empty(t, r.Growth)
}
