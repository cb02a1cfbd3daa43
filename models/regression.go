package models

import "time"

type RegressionResult struct {
	Pair         Pair
	Slope        float64
	Intercept    float64
	RSquared     float64
	Dates        []time.Time
	Residuals    []float64
	Standardized []float64
	Observations int
	FirstDate    time.Time
	LastDate     time.Time
}

// LatestStandardized is the standardized residual at the most recent date.
func (r *RegressionResult) LatestStandardized() float64 {
	return r.Standardized[len(r.Standardized)-1]
}

type RankingEntry struct {
	Index    int     `json:"index"` // position in pair generation order
	Pair     Pair    `json:"pair"`
	Label    string  `json:"label"`
	Residual float64 `json:"residual"`
}

type RankingTable struct {
	Entries []RankingEntry // ascending by residual
	Top     []RankingEntry // largest first
	Bottom  []RankingEntry // smallest first
}

// Extremes is Top followed by Bottom, overlapping entries are kept twice.
func (t RankingTable) Extremes() []RankingEntry {
	res := make([]RankingEntry, 0, len(t.Top)+len(t.Bottom))
	res = append(res, t.Top...)
	return append(res, t.Bottom...)
}
