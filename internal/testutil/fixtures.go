// Package testutil builds table fixtures for tests.
package testutil

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"macrocycle/internal/quarter"
	"macrocycle/internal/table"
)

// Series is one labelled row of a fixture table.
type Series struct {
	Label  string
	Values []float64
}

// Quarterly builds a table with one "YYYYQn" column per value, starting at start.
func Quarterly(start quarter.Label, series ...Series) *table.Table {
	width := 0
	for _, s := range series {
		if len(s.Values) > width {
			width = len(s.Values)
		}
	}
	header := make([]string, width+1)
	header[0] = "Series"
	for i := 0; i < width; i++ {
		l := quarter.FromOrdinal(start.Ordinal() + i)
		header[i+1] = strconv.Itoa(l.Year) + "Q" + strconv.Itoa(l.Quarter)
	}
	return build("quarterly", header, series)
}

// Annual builds a table with one year column per value, starting at startYear.
func Annual(startYear int, series ...Series) *table.Table {
	width := 0
	for _, s := range series {
		if len(s.Values) > width {
			width = len(s.Values)
		}
	}
	header := make([]string, width+1)
	header[0] = "Series"
	for i := 0; i < width; i++ {
		header[i+1] = strconv.Itoa(startYear + i)
	}
	return build("annual", header, series)
}

func build(name string, header []string, series []Series) *table.Table {
	t := &table.Table{Name: name, Header: header}
	for _, s := range series {
		cells := make([]string, len(header)-1)
		for i, v := range s.Values {
			cells[i] = Format(v)
		}
		t.Rows = append(t.Rows, table.Row{Label: s.Label, Cells: cells})
	}
	return t
}

// Format renders v the way a spreadsheet export would; NaN becomes a blank cell.
func Format(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Constant returns n copies of v.
func Constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Scale returns x multiplied by k.
func Scale(x []float64, k float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v * k
	}
	return out
}

// Cyclical returns n quarters of a growing level with a sinusoidal cycle of the
// given amplitude (as a fraction of the level) and period in quarters.
func Cyclical(n int, amplitude, period float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		trend := 1000 * math.Pow(1.008, float64(i))
		out[i] = trend * (1 + amplitude*math.Sin(2*math.Pi*float64(i)/period))
	}
	return out
}

// ScenarioA is six quarters of GDP without inflation, from 1990Q1.
func ScenarioA() *table.Table {
	gdp := []float64{100, 102, 105, 103, 108, 110}
	return Quarterly(quarter.Label{Year: 1990, Quarter: 1},
		Series{"Nominal GDP", gdp},
		Series{"GDP deflator", Constant(6, 100)},
		Series{"Final consumption expenditure", Scale(gdp, 0.6)},
		Series{"Gross fixed capital formation", Scale(gdp, 0.2)},
	)
}

// ScenarioB is two quarters where the deflator doubles, from 1990Q1.
func ScenarioB() *table.Table {
	return Quarterly(quarter.Label{Year: 1990, Quarter: 1},
		Series{"Nominal GDP", []float64{10, 10}},
		Series{"GDP deflator", []float64{50, 100}},
		Series{"Final consumption expenditure", []float64{6, 6}},
		Series{"Gross fixed capital formation", []float64{2, 2}},
		Series{"Changes in inventories", []float64{0, 0}},
	)
}

// Economy is forty quarters from 1990Q1 with cyclical GDP, smoother consumption
// and more volatile investment, plus a mild inflation trend.
func Economy() *table.Table {
	const n = 40
	deflator := make([]float64, n)
	for i := range deflator {
		deflator[i] = 80 * math.Pow(1.01, float64(i))
	}
	realGDP := Cyclical(n, 0.03, 16)
	nominal := make([]float64, n)
	cons := make([]float64, n)
	gfcf := make([]float64, n)
	inv := make([]float64, n)
	realCons := Cyclical(n, 0.015, 16)
	realGFCF := Cyclical(n, 0.09, 16)
	for i := range nominal {
		p := deflator[i] / deflator[0]
		nominal[i] = realGDP[i] * p
		cons[i] = 0.6 * realCons[i] * p
		gfcf[i] = 0.2 * realGFCF[i] * p
		inv[i] = 0
	}
	return Quarterly(quarter.Label{Year: 1990, Quarter: 1},
		Series{"Nominal GDP", nominal},
		Series{"GDP deflator", deflator},
		Series{"Final consumption expenditure", cons},
		Series{"Gross fixed capital formation", gfcf},
		Series{"Changes in inventories", inv},
	)
}

// Population is an annual table of population and employment from 1990.
func Population(years int) *table.Table {
	pop := make([]float64, years)
	emp := make([]float64, years)
	for i := range pop {
		pop[i] = 10 + float64(i)
		emp[i] = 4 + 0.5*float64(i)
	}
	return Annual(1990,
		Series{"Total population", pop},
		Series{"Employed persons", emp},
	)
}

// WriteCSV writes t to dir/name and returns the path.
func WriteCSV(tb testing.TB, dir, name string, t *table.Table) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	records := [][]string{t.Header}
	for _, r := range t.Rows {
		records = append(records, append([]string{r.Label}, r.Cells...))
	}
	if err := w.WriteAll(records); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}
