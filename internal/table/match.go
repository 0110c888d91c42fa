package table

import (
	"strings"

	apperrors "macrocycle/internal/errors"
)

// Series keys used by the analysis.
const (
	SeriesGDP         = "gdp"
	SeriesDeflator    = "deflator"
	SeriesConsumption = "consumption"
	SeriesInvestment  = "investment"
	SeriesInventories = "inventories"
	SeriesPopulation  = "population"
	SeriesEmployment  = "employment"
)

// SeriesMatcher locates one series by its row label. Candidates are tried in
// priority order; each is a case-insensitive substring test against the labels
// in table order. Labels containing an Exclude phrase never match.
type SeriesMatcher struct {
	Series     string
	Candidates []string
	Exclude    []string
	Optional   bool
}

// DefaultQuarterlyMatchers covers the national-accounts rows of the quarterly table.
func DefaultQuarterlyMatchers() []SeriesMatcher {
	return []SeriesMatcher{
		{
			Series:     SeriesGDP,
			Candidates: []string{"nominal gdp", "gdp at current prices", "gross domestic product", "gdp"},
			Exclude:    []string{"deflator", "per capita", "growth"},
		},
		{
			Series:     SeriesDeflator,
			Candidates: []string{"gdp deflator", "gdp_deflator", "deflator"},
		},
		{
			Series:     SeriesConsumption,
			Candidates: []string{"final consumption expenditure", "household consumption", "private consumption", "consumption"},
		},
		{
			Series:     SeriesInvestment,
			Candidates: []string{"gross fixed capital formation", "fixed capital formation", "gfcf", "fixed investment", "investment"},
			Exclude:    []string{"inventor"},
		},
		{
			Series:     SeriesInventories,
			Candidates: []string{"changes in inventories", "change in inventories", "inventories"},
			Optional:   true,
		},
	}
}

// DefaultAnnualMatchers covers the population and employment rows of the annual table.
func DefaultAnnualMatchers() []SeriesMatcher {
	return []SeriesMatcher{
		{Series: SeriesPopulation, Candidates: []string{"total population", "population"}},
		{Series: SeriesEmployment, Candidates: []string{"employed persons", "employment", "employed"}, Exclude: []string{"unemploy"}},
	}
}

// Find returns the first row matched by m.
func (t *Table) Find(m SeriesMatcher) (Row, bool) {
	for _, phrase := range m.Candidates {
		needle := strings.ToLower(phrase)
		for _, r := range t.Rows {
			label := strings.ToLower(r.Label)
			if !strings.Contains(label, needle) || excluded(label, m.Exclude) {
				continue
			}
			return r, true
		}
	}
	return Row{}, false
}

func excluded(label string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(label, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Require resolves every matcher. Optional matchers that find nothing are left
// out of the result; the first required one that finds nothing fails the call.
func (t *Table) Require(matchers ...SeriesMatcher) (map[string]Row, error) {
	found := make(map[string]Row, len(matchers))
	for _, m := range matchers {
		r, ok := t.Find(m)
		if !ok {
			if m.Optional {
				continue
			}
			return nil, &apperrors.RequiredSeriesMissingError{Series: m.Series, Candidates: m.Candidates}
		}
		found[m.Series] = r
	}
	return found, nil
}
