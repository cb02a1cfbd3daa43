package alpha_vantage

import "strings"

// TimeSeries specifies which daily endpoint serves a ticker.
type TimeSeries uint8

const (
	TimeSeriesDaily TimeSeries = iota
	TimeSeriesFxDaily
)

// fxSuffix marks currency pairs in the catalog, e.g. USDBRL=X.
const fxSuffix = "=X"

func (t TimeSeries) Name() string {
	switch t {
	case TimeSeriesDaily:
		return "TimeSeriesDaily"
	case TimeSeriesFxDaily:
		return "TimeSeriesFxDaily"
	default:
		return ""
	}
}

func (t TimeSeries) Function() string {
	switch t {
	case TimeSeriesDaily:
		return "TIME_SERIES_DAILY"
	case TimeSeriesFxDaily:
		return "FX_DAILY"
	default:
		return ""
	}
}

// TimeSeriesKey is the top level key holding the observations.
func (t TimeSeries) TimeSeriesKey() string {
	switch t {
	case TimeSeriesDaily:
		return "Time Series (Daily)"
	case TimeSeriesFxDaily:
		return "Time Series FX (Daily)"
	default:
		return ""
	}
}

// timeSeriesFor picks the endpoint and its symbol parameters for a catalog ticker.
func timeSeriesFor(ticker string) (TimeSeries, map[string]string) {
	if pair, ok := strings.CutSuffix(strings.ToUpper(ticker), fxSuffix); ok && len(pair) == 6 {
		return TimeSeriesFxDaily, map[string]string{
			fromSymbol: pair[:3],
			toSymbol:   pair[3:],
		}
	}
	return TimeSeriesDaily, map[string]string{
		symbol: ticker,
	}
}
