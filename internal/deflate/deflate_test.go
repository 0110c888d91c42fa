package deflate

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "macrocycle/internal/errors"
)

func TestRebase_BaseIsHundred(t *testing.T) {
	deflators := [][]float64{
		{50, 100},
		{87.3, 91.2, 95.4, 100.1, 104.9},
		{0.0031, 0.0047, 1.2, 19.5, 233.7},
		{-20, 40, 80},
	}

	for _, d := range deflators {
		for base := range d {
			rebased, err := Rebase(d, base)
			require.NoError(t, err)
			assert.InDelta(t, 100.0, rebased[base], 1e-9)
			for i := range d {
				assert.InDelta(t, d[i]/d[base], rebased[i]/100, 1e-12)
			}
		}
	}
}

func TestRebase_InvalidBase(t *testing.T) {
	tests := []struct {
		name  string
		input []float64
		base  int
	}{
		{"zero at base", []float64{100, 0, 120}, 1},
		{"nan at base", []float64{math.NaN(), 100}, 0},
		{"inf at base", []float64{math.Inf(1), 100}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rebased, err := Rebase(tt.input, tt.base)
			assert.Nil(t, rebased)
			var baseErr *apperrors.InvalidBaseValueError
			require.ErrorAs(t, err, &baseErr)
			assert.Equal(t, tt.base, baseErr.Index)
		})
	}

	_, err := Rebase([]float64{1, 2}, 5)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeValidation))
}

func TestDeflate(t *testing.T) {
	t.Run("two quarter scenario", func(t *testing.T) {
		rebased, err := Rebase([]float64{50, 100}, 0)
		require.NoError(t, err)
		assert.Equal(t, []float64{100, 200}, rebased)

		got, err := Deflate([]float64{10, 10}, rebased)
		require.NoError(t, err)
		assert.Equal(t, []float64{10, 5}, got)
	})

	t.Run("no inflation leaves levels unchanged", func(t *testing.T) {
		nominal := []float64{100, 102, 105, 103, 108, 110}
		rebased, err := Rebase([]float64{100, 100, 100, 100, 100, 100}, 0)
		require.NoError(t, err)
		got, err := Deflate(nominal, rebased)
		require.NoError(t, err)
		assert.Equal(t, nominal, got)
	})

	t.Run("nan propagates", func(t *testing.T) {
		got, err := Deflate([]float64{1, math.NaN(), 3}, []float64{100, 100, math.NaN()})
		require.NoError(t, err)
		assert.Equal(t, 1.0, got[0])
		assert.True(t, math.IsNaN(got[1]))
		assert.True(t, math.IsNaN(got[2]))
	})

	t.Run("zero deflator is floored", func(t *testing.T) {
		got, err := Deflate([]float64{1}, []float64{0})
		require.NoError(t, err)
		assert.False(t, math.IsInf(got[0], 0))
		assert.InDelta(t, 1/Epsilon, got[0], 1)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := Deflate([]float64{1, 2}, []float64{100})
		assert.Error(t, err)
	})
}

func TestInvestment(t *testing.T) {
	assert.Equal(t, []float64{10, 20}, Investment([]float64{10, 20}, nil))
	assert.Equal(t, []float64{11, 18}, Investment([]float64{10, 20}, []float64{1, -2}))

	short := Investment([]float64{10, 20}, []float64{1})
	assert.Equal(t, 11.0, short[0])
	assert.True(t, math.IsNaN(short[1]))
}

func TestValidMaskAndSelect(t *testing.T) {
	a := []float64{1, math.NaN(), 3, 4}
	b := []float64{1, 2, math.Inf(1), 4}

	mask := ValidMask(a, b)
	assert.Equal(t, []bool{true, false, false, true}, mask)
	assert.Equal(t, []float64{1, 4}, Select(a, mask))
	assert.Equal(t, []string{"q1", "q4"}, Select([]string{"q1", "q2", "q3", "q4"}, mask))
	assert.Nil(t, ValidMask())
}

func TestConstructor_Build(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := NewConstructor(logger)

	t.Run("inventories missing is degraded not fatal", func(t *testing.T) {
		buf.Reset()
		rs, err := c.Build(context.Background(), Inputs{
			Deflator:    []float64{50, 100},
			GDP:         []float64{10, 10},
			Consumption: []float64{6, 8},
			GFCF:        []float64{2, 4},
			Base:        0,
			BaseLabel:   "2000 1Q",
		})
		require.NoError(t, err)
		assert.True(t, rs.InventoriesMissing)
		assert.Equal(t, []float64{10, 5}, rs.GDP)
		assert.Equal(t, []float64{6, 4}, rs.Consumption)
		assert.Equal(t, []float64{2, 2}, rs.Investment)
		assert.Contains(t, buf.String(), "degraded_accuracy")
	})

	t.Run("inventories included", func(t *testing.T) {
		rs, err := c.Build(context.Background(), Inputs{
			Deflator:    []float64{100, 200},
			GDP:         []float64{10, 10},
			Consumption: []float64{6, 8},
			GFCF:        []float64{2, 4},
			Inventories: []float64{1, 2},
		})
		require.NoError(t, err)
		assert.False(t, rs.InventoriesMissing)
		assert.Equal(t, []float64{3, 3}, rs.Investment)
	})

	t.Run("zero deflator at base", func(t *testing.T) {
		rs, err := c.Build(context.Background(), Inputs{
			Deflator:    []float64{0, 100},
			GDP:         []float64{10, 10},
			Consumption: []float64{6, 8},
			GFCF:        []float64{2, 4},
			BaseLabel:   "1990 1Q",
		})
		assert.Nil(t, rs)
		var baseErr *apperrors.InvalidBaseValueError
		require.ErrorAs(t, err, &baseErr)
		assert.Equal(t, "1990 1Q", baseErr.Label)
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		assert.NotNil(t, NewConstructor(nil).logger)
	})
}
