package quarter

import (
	"fmt"
	"sort"

	apperrors "macrocycle/internal/errors"
)

// Index is the chronological time axis recovered from a table's column headers.
//
// Valid and Labels are parallel to Headers. Order lists header positions in
// chronological order, and Positions maps a canonical label to its position
// within Order.
type Index struct {
	Headers    []string
	Valid      []bool
	Labels     []Label
	Order      []int
	Positions  map[string]int
	Duplicates []int
}

// BuildIndex parses every header with patterns and sorts the valid ones.
// A header repeating an already parsed quarter is marked invalid.
func BuildIndex(headers []string, patterns []Pattern) (*Index, error) {
	idx := &Index{
		Headers:   headers,
		Valid:     make([]bool, len(headers)),
		Labels:    make([]Label, len(headers)),
		Positions: make(map[string]int),
	}

	seen := make(map[Label]bool, len(headers))
	for i, h := range headers {
		l, ok := Parse(h, patterns)
		if !ok {
			continue
		}
		if seen[l] {
			idx.Duplicates = append(idx.Duplicates, i)
			continue
		}
		seen[l] = true
		idx.Valid[i] = true
		idx.Labels[i] = l
		idx.Order = append(idx.Order, i)
	}

	if len(idx.Order) == 0 {
		return nil, &apperrors.DataFormatError{
			Message: fmt.Sprintf("none of %d column headers is a recognised quarter label", len(headers)),
		}
	}

	sort.SliceStable(idx.Order, func(a, b int) bool {
		return idx.Labels[idx.Order[a]].Before(idx.Labels[idx.Order[b]])
	})
	for pos, col := range idx.Order {
		idx.Positions[idx.Labels[col].Canonical()] = pos
	}

	return idx, nil
}

// Len returns the number of valid quarters
func (idx *Index) Len() int {
	return len(idx.Order)
}

// Sorted returns the valid labels in chronological order.
func (idx *Index) Sorted() []Label {
	out := make([]Label, len(idx.Order))
	for pos, col := range idx.Order {
		out[pos] = idx.Labels[col]
	}
	return out
}

// First returns the earliest quarter
func (idx *Index) First() Label {
	return idx.Labels[idx.Order[0]]
}

// Last returns the latest quarter
func (idx *Index) Last() Label {
	return idx.Labels[idx.Order[len(idx.Order)-1]]
}

// Invalid returns the headers that did not parse, in input order. Repeated
// quarters are reported by Duplicates instead.
func (idx *Index) Invalid() []string {
	dup := make(map[int]bool, len(idx.Duplicates))
	for _, i := range idx.Duplicates {
		dup[i] = true
	}
	var out []string
	for i, ok := range idx.Valid {
		if !ok && !dup[i] {
			out = append(out, idx.Headers[i])
		}
	}
	return out
}

// ResolveBase parses base with the index's grammar and returns its sorted position.
func (idx *Index) ResolveBase(base string, patterns []Pattern) (int, error) {
	l, ok := Parse(base, patterns)
	if !ok {
		return 0, &apperrors.ConfigurationError{
			Field:   "base quarter",
			Value:   base,
			Message: `not a recognised quarter label (expected e.g. "1990 1Q" or "1990Q1")`,
		}
	}

	pos, ok := idx.Positions[l.Canonical()]
	if !ok {
		return 0, &apperrors.RangeError{
			Field: "base quarter",
			Value: l.Canonical(),
			First: idx.First().Canonical(),
			Last:  idx.Last().Canonical(),
		}
	}
	return pos, nil
}
