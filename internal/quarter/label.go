package quarter

import (
	"fmt"
	"regexp"
	"strconv"
)

// Label identifies one fiscal quarter.
type Label struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

// Canonical returns the display and lookup form, e.g. "2023 1Q".
func (l Label) Canonical() string {
	return fmt.Sprintf("%d %dQ", l.Year, l.Quarter)
}

// String implements fmt.Stringer
func (l Label) String() string {
	return l.Canonical()
}

// Ordinal maps the label onto a continuous quarter count.
func (l Label) Ordinal() int {
	return l.Year*4 + l.Quarter - 1
}

// Before reports whether l precedes other chronologically.
func (l Label) Before(other Label) bool {
	return l.Ordinal() < other.Ordinal()
}

// IsValid checks the quarter range
func (l Label) IsValid() bool {
	return l.Quarter >= 1 && l.Quarter <= 4
}

// FromOrdinal is the inverse of Ordinal.
func FromOrdinal(n int) Label {
	return Label{Year: n / 4, Quarter: n%4 + 1}
}

// Pattern is one accepted surface syntax for quarter headers.
type Pattern struct {
	Name         string
	Expr         *regexp.Regexp
	YearGroup    int
	QuarterGroup int
}

// DefaultPatterns returns the accepted syntaxes in matching priority order.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:         "year-Qn",
			Expr:         regexp.MustCompile(`^\s*(\d{4})\s*[-/ ]?\s*[Qq]\s*([1-4])\s*$`),
			YearGroup:    1,
			QuarterGroup: 2,
		},
		{
			Name:         "year-nQ",
			Expr:         regexp.MustCompile(`^\s*(\d{4})\s*[-/ ]?\s*([1-4])\s*[Qq]\s*$`),
			YearGroup:    1,
			QuarterGroup: 2,
		},
		{
			// headers that went through a spreadsheet or dataframe export, e.g. "x20231Q" or "X2023.1Q"
			Name:         "prefixed-year-nQ",
			Expr:         regexp.MustCompile(`^\s*[Xx]_?(\d{4})[._ ]?([1-4])\s*[Qq]\s*$`),
			YearGroup:    1,
			QuarterGroup: 2,
		},
		{
			Name:         "Qn-year",
			Expr:         regexp.MustCompile(`^\s*[Qq]([1-4])\s*[-/ ]?\s*(\d{4})\s*$`),
			YearGroup:    2,
			QuarterGroup: 1,
		},
	}
}

// Parse tries each pattern in order; the first match wins.
func Parse(s string, patterns []Pattern) (Label, bool) {
	for _, p := range patterns {
		m := p.Expr.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[p.YearGroup])
		if err != nil {
			continue
		}
		q, err := strconv.Atoi(m[p.QuarterGroup])
		if err != nil {
			continue
		}
		l := Label{Year: year, Quarter: q}
		if !l.IsValid() {
			continue
		}
		return l, true
	}
	return Label{}, false
}
