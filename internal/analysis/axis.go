package analysis

import (
	"fmt"

	"macrocycle/internal/quarter"
	"macrocycle/internal/table"
)

// Axis describes the time axis recovered from a quarterly table's headers.
type Axis struct {
	Quarters   []string `json:"quarters"`
	First      string   `json:"first"`
	Last       string   `json:"last"`
	Invalid    []string `json:"invalid_headers,omitempty"`
	Duplicates []string `json:"duplicate_headers,omitempty"`
}

// DescribeAxis parses the column headers of t. Nil patterns use the defaults.
func DescribeAxis(t *table.Table, patterns []quarter.Pattern) (*Axis, error) {
	if t == nil {
		return nil, fmt.Errorf("no quarterly table supplied")
	}
	if patterns == nil {
		patterns = quarter.DefaultPatterns()
	}
	idx, err := quarter.BuildIndex(t.Columns(), patterns)
	if err != nil {
		return nil, err
	}

	ax := &Axis{
		First:   idx.First().Canonical(),
		Last:    idx.Last().Canonical(),
		Invalid: idx.Invalid(),
	}
	for _, l := range idx.Sorted() {
		ax.Quarters = append(ax.Quarters, l.Canonical())
	}
	for _, col := range idx.Duplicates {
		ax.Duplicates = append(ax.Duplicates, idx.Headers[col])
	}
	return ax, nil
}
