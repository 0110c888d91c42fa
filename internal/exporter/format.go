package exporter

import (
	"math"
	"strconv"

	"macrocycle/internal/cycle"
	"macrocycle/internal/report"
)

// rounded marks a cell that is displayed with exactly two decimals.
type rounded float64

// formatFloat formats a value at full precision. Missing values are empty.
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatRounded formats a value with exactly 2 decimal places, so 13.4
// appears as 13.40.
func formatRounded(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(cycle.Round2(f), 'f', 2, 64)
}

// formatCell renders one table cell for CSV output.
func formatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case int:
		return strconv.Itoa(c)
	case float64:
		return formatFloat(c)
	case report.Number:
		return formatFloat(c.Float())
	case rounded:
		return formatRounded(float64(c))
	default:
		return ""
	}
}

// cellValue converts one table cell into a spreadsheet value. Missing numbers
// become empty cells.
func cellValue(v any) any {
	var f float64
	switch c := v.(type) {
	case float64:
		f = c
	case report.Number:
		f = c.Float()
	case rounded:
		f = cycle.Round2(float64(c))
	default:
		return v
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
