package core

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	m "pairs.service/models"
)

const DefaultExtremes = 15

// Labeler names a pair for display, catalog.Catalog.PairLabel satisfies it.
type Labeler func(m.Pair) string

// entries builds one row per result, in pair generation order.
func entries(results []*m.RegressionResult, label Labeler) []m.RankingEntry {
	res := make([]m.RankingEntry, len(results))
	for i, r := range results {
		res[i] = m.RankingEntry{
			Index:    i,
			Pair:     r.Pair,
			Label:    label(r.Pair),
			Residual: round2(r.LatestStandardized()),
		}
	}
	return res
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Rank orders the latest standardized residuals ascending and selects the k largest and
// k smallest. k <= 0 uses DefaultExtremes. Ties keep generation order everywhere.
func Rank(results []*m.RegressionResult, label Labeler, k int) (m.RankingTable, error) {
	if len(results) == 0 {
		return m.RankingTable{}, ErrNoRegressedPairs
	}
	rows := entries(results, label)
	if k <= 0 {
		k = DefaultExtremes
	}
	k = min(k, len(rows))

	ascending := slices.Clone(rows)
	slices.SortStableFunc(ascending, func(a, b m.RankingEntry) int {
		return cmp.Compare(a.Residual, b.Residual)
	})

	descending := slices.Clone(rows)
	slices.SortStableFunc(descending, func(a, b m.RankingEntry) int {
		return cmp.Compare(b.Residual, a.Residual)
	})

	return m.RankingTable{
		Entries: ascending,
		Top:     descending[:k],
		Bottom:  slices.Clone(ascending[:k]),
	}, nil
}
