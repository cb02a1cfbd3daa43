package models

// ServiceResponse is the JSON envelope for every non-document response of the http surface.
type ServiceResponse[T any] struct {
	Data  *T     `json:"data"`
	Error string `json:"error"`
}

func ResponseOk[T any](data T) ServiceResponse[T] {
	return ServiceResponse[T]{Data: &data}
}

func ResponseError(err error) ServiceResponse[any] {
	return ServiceResponse[any]{Error: err.Error()}
}

const (
	KindPairs     = "pairs"
	KindZScore    = "zscore"
	KindVariation = "variation"
)

// ReportSummary describes a finished generation without the document itself.
// Pair counts and extremes are only set for the pairs report, Assets for the others.
type ReportSummary struct {
	RunID        string         `json:"runId"`
	Kind         string         `json:"kind"`
	Assets       int            `json:"assets,omitempty"`
	Pairs        int            `json:"pairs"`
	Regressed    int            `json:"regressed"`
	Skipped      int            `json:"skipped"`
	FailedTicker []string       `json:"failedTickers"`
	Pages        int            `json:"pages"`
	Extremes     []RankingEntry `json:"extremes"`
}
