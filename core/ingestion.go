package core

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/guregu/null/v6"
	"github.com/sirupsen/logrus"

	ex "pairs.service/extensions"
	m "pairs.service/models"
)

// FetchResult is the outcome of one bulk request.
type FetchResult struct {
	Frame  *m.Frame
	Failed []string // in request order

	// Outage is set when the whole request failed, every ticker is then in Failed
	Outage error
}

// Fetch issues a single bulk request and aligns the successful columns on the union of
// their dates. A ticker fails when its series is absent or carries no close at all.
func Fetch(ctx context.Context, provider SeriesProvider, tickers []string, start, end time.Time) FetchResult {
	raw, err := provider.FetchDailyCloses(ctx, tickers, start, end)
	if err != nil {
		return FetchResult{
			Frame:  m.NewFrame(),
			Failed: slices.Clone(tickers),
			Outage: err,
		}
	}

	var failed []string
	usable := make(map[string]m.Series, len(raw))
	for _, ticker := range tickers {
		series, ok := raw[ticker]
		if !ok || series.ValidCount() == 0 {
			failed = append(failed, ticker)
			continue
		}
		usable[ticker] = series.Normalize()
	}

	return FetchResult{
		Frame:  buildFrame(usable),
		Failed: failed,
	}
}

func buildFrame(columns map[string]m.Series) *m.Frame {
	frame := m.NewFrame()

	var dates []time.Time
	for _, series := range columns {
		for _, o := range series {
			if o.Close.Valid {
				dates = append(dates, ex.DateOnly(o.Date))
			}
		}
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	dates = slices.CompactFunc(dates, func(a, b time.Time) bool { return a.Equal(b) })

	index := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}

	frame.Dates = dates
	for ticker, series := range columns {
		column := make([]null.Float, len(dates))
		for _, o := range series {
			if !o.Close.Valid {
				continue
			}
			column[index[ex.DateOnly(o.Date)]] = o.Close
		}
		frame.Columns[ticker] = column
	}

	return frame
}

// Prune drops the failed tickers from the universe, order is kept.
func Prune(universe, failed []string) []string {
	drop := ex.ToSet(failed)
	return ex.FilterMultiple(universe, func(t string) bool {
		_, ok := drop[t]
		return !ok
	})
}

// ingest fetches the universe over the lookback range.
func (sc *ServiceContext) ingest(ctx context.Context, universe []string, logger logrus.FieldLogger) *FetchResult {
	start, end := sc.dateRange()
	return sc.ingestRange(ctx, universe, start, end, logger)
}

// ingestRange fetches the universe and retries once when tickers failed. The retry re-issues the
// pruned universe, or the full universe when the first attempt failed as a whole.
func (sc *ServiceContext) ingestRange(ctx context.Context, universe []string, start, end time.Time, logger logrus.FieldLogger) *FetchResult {
	first := Fetch(ctx, sc.Provider, universe, start, end)
	logFetch(logger, "initial", universe, first)
	if len(first.Failed) == 0 {
		return &first
	}

	retry := universe
	if first.Outage == nil {
		retry = Prune(universe, first.Failed)
	}
	if len(retry) == 0 {
		return &first
	}

	second := Fetch(ctx, sc.Provider, retry, start, end)
	logFetch(logger, "retry", retry, second)

	if second.Outage != nil && first.Outage == nil {
		logger.WithError(second.Outage).Warn("retry failed, keeping initial fetch")
		return &first
	}
	return &second
}

// usable returns the frame, or ErrNoUsableSeries when no ticker survived ingestion.
func (res *FetchResult) usable(logger logrus.FieldLogger) (*m.Frame, error) {
	if len(res.Frame.Columns) > 0 {
		return res.Frame, nil
	}
	logger.Error("no usable series, aborting")
	if res.Outage != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoUsableSeries, res.Outage)
	}
	return nil, ErrNoUsableSeries
}

func logFetch(logger logrus.FieldLogger, attempt string, requested []string, res FetchResult) {
	l := logger.WithFields(logrus.Fields{
		"attempt":   attempt,
		"requested": len(requested),
		"succeeded": len(res.Frame.Columns),
		"rows":      res.Frame.Len(),
	})
	if res.Outage != nil {
		l.WithError(res.Outage).Warn("provider request failed")
		return
	}
	if len(res.Failed) > 0 {
		l.WithField("failed", res.Failed).Warn("tickers failed to download")
		return
	}
	l.Info("series downloaded")
}
