package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Row is one labelled series of a table. Cells are aligned with Table.Header[1:].
type Row struct {
	Label string
	Cells []string
}

// Table is a cleaned wide table: the first header names the label column and
// every further header labels one period.
type Table struct {
	Name   string
	Header []string
	Rows   []Row
}

// Columns returns the period headers (every header after the label column).
func (t *Table) Columns() []string {
	if len(t.Header) == 0 {
		return nil
	}
	return t.Header[1:]
}

// New builds a table from raw records where records[0] is the header row.
func New(name string, records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("table %s is empty", name)
	}
	t := &Table{Name: name, Header: records[0]}
	for _, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		t.Rows = append(t.Rows, Row{Label: rec[0], Cells: rec[1:]})
	}
	return t, nil
}

// Clean trims whitespace everywhere, drops blank and exact-duplicate rows (the
// first occurrence wins), and pads or truncates rows to the header width.
func Clean(t *Table) *Table {
	out := &Table{Name: t.Name, Header: make([]string, len(t.Header))}
	for i, h := range t.Header {
		out.Header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	width := len(out.Header) - 1
	if width < 0 {
		width = 0
	}

	seen := make(map[string]bool, len(t.Rows))
	for _, r := range t.Rows {
		row := Row{Label: strings.TrimSpace(r.Label), Cells: make([]string, width)}
		blank := row.Label == ""
		for i := 0; i < width && i < len(r.Cells); i++ {
			row.Cells[i] = strings.TrimSpace(r.Cells[i])
			if row.Cells[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}

		key := row.Label + "\x00" + strings.Join(row.Cells, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Rows = append(out.Rows, row)
	}
	return out
}

var missingTokens = map[string]bool{
	"":     true,
	"-":    true,
	"--":   true,
	"..":   true,
	"...":  true,
	"n/a":  true,
	"na":   true,
	"nan":  true,
	"null": true,
}

// ParseNumber reads a numeric cell. Thousands separators and blanks inside the
// number are ignored; the usual missing-value markers yield NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if missingTokens[strings.ToLower(s)] {
		return math.NaN()
	}
	s = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "_", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Values parses the cells of row at the given column positions.
func (t *Table) Values(row Row, columns []int) []float64 {
	out := make([]float64, len(columns))
	for i, c := range columns {
		if c < 0 || c >= len(row.Cells) {
			out[i] = math.NaN()
			continue
		}
		out[i] = ParseNumber(row.Cells[c])
	}
	return out
}
