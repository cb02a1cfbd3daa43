package core

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
	"github.com/sirupsen/logrus"

	ex "pairs.service/extensions"
	m "pairs.service/models"
	"pairs.service/report"
)

var DefaultHorizons = []int{7, 45, 90}

// SubtractBusinessDays steps back n weekdays, a weekend date first rolls to the Friday before.
func SubtractBusinessDays(t time.Time, n int) time.Time {
	for n > 0 {
		t = t.AddDate(0, 0, -1)
		if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n--
		}
	}
	return t
}

type dailyClose struct {
	date  time.Time
	value float64
}

// cleanHistory drops missing and zero closes.
func cleanHistory(dates []time.Time, column []null.Float) []dailyClose {
	res := make([]dailyClose, 0, len(column))
	for i, v := range column {
		if v.Valid && v.Float64 != 0 {
			res = append(res, dailyClose{dates[i], v.Float64})
		}
	}
	return res
}

// closeAsOf is the last close on or before target.
func closeAsOf(history []dailyClose, target time.Time) (float64, bool) {
	idx, found := slices.BinarySearchFunc(history, target, func(c dailyClose, t time.Time) int {
		return c.date.Compare(t)
	})
	if found {
		return history[idx].value, true
	}
	if idx == 0 {
		return 0, false
	}
	return history[idx-1].value, true
}

func percentChange(current, base float64) float64 {
	return (current - base) / base * 100
}

// Variation measures the latest close against the first close of the year of now and
// against the close as of each number of business days before now. dates are midnight UTC.
func Variation(dates []time.Time, column []null.Float, now time.Time, horizons []int) (m.VariationEntry, error) {
	history := cleanHistory(dates, column)
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	first, _ := slices.BinarySearchFunc(history, yearStart, func(c dailyClose, t time.Time) int {
		return c.date.Compare(t)
	})
	if first == len(history) {
		return m.VariationEntry{}, fmt.Errorf("%w: no close since %s", ErrInsufficientData, ex.FmtShort(yearStart))
	}

	current := history[len(history)-1].value
	entry := m.VariationEntry{
		YearToDate: percentChange(current, history[first].value),
		Changes:    make([]float64, len(horizons)),
	}
	for i, h := range horizons {
		target := ex.DateOnly(SubtractBusinessDays(now, h))
		base, ok := closeAsOf(history, target)
		if !ok {
			return m.VariationEntry{}, fmt.Errorf("%w: no close on or before %s", ErrInsufficientData, ex.FmtShort(target))
		}
		entry.Changes[i] = percentChange(current, base)
	}
	return entry, nil
}

// variationRange starts on January 1 of the previous year and ends yesterday.
func (sc *ServiceContext) variationRange() (start, end time.Time) {
	now := sc.now()
	end = now.AddDate(0, 0, -1)
	start = time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, now.Location())
	return
}

// GenerateVariation renders, per asset class, one scatter page per horizon plus a year to date page.
func (sc *ServiceContext) GenerateVariation(ctx context.Context, w io.Writer) (*m.ReportSummary, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := sc.Logger.WithFields(logrus.Fields{"run_id": runID, "report": m.KindVariation})

	horizons := sc.Settings.VariationHorizons
	if len(horizons) == 0 {
		horizons = DefaultHorizons
	}

	universe := sc.assetUniverse()
	logger.WithFields(logrus.Fields{"tickers": len(universe), "horizons": horizons}).Info("starting variation generation")

	from, to := sc.variationRange()
	frame, err := sc.ingestRange(ctx, universe, from, to, logger).usable(logger)
	if err != nil {
		return nil, err
	}

	now := sc.now()
	var classes []m.VariationClass
	assets := 0
	for _, ac := range assetClasses {
		class := m.VariationClass{Name: ac.class, Category: ac.category, Horizons: horizons}
		for _, id := range sc.Catalog.Members(ac.category) {
			if !frame.Has(id) {
				continue
			}
			entry, err := Variation(frame.Dates, frame.Columns[id], now, horizons)
			if err != nil {
				logger.WithField("ticker", id).WithError(err).Warn("asset skipped")
				continue
			}
			entry.ID, entry.Label = id, sc.Catalog.LabelOf(id)
			class.Entries = append(class.Entries, entry)
		}
		if len(class.Entries) == 0 {
			logger.WithField("class", class.Name).Warn("asset class skipped, no usable assets")
			continue
		}

		slices.SortStableFunc(class.Entries, func(a, b m.VariationEntry) int {
			return cmp.Compare(a.YearToDate, b.YearToDate)
		})
		classes = append(classes, class)
		assets += len(class.Entries)
	}
	if len(classes) == 0 {
		logger.Error("no asset class to render, aborting")
		return nil, ErrNoUsableSeries
	}

	pages, err := report.RenderVariations(w, sc.reportOptions(logger), classes)
	if err != nil {
		logger.WithError(err).Error("error rendering variation report")
		return nil, err
	}

	logger.WithFields(logrus.Fields{"assets": assets, "pages": pages}).
		Infof("variation report generated (time: %v)", time.Since(start))

	return &m.ReportSummary{
		RunID:        runID,
		Kind:         m.KindVariation,
		Assets:       assets,
		FailedTicker: Prune(universe, frame.Tickers()),
		Pages:        pages,
	}, nil
}

func (sc *ServiceContext) GenerateVariationToFile(ctx context.Context, path string) (*m.ReportSummary, error) {
	return writeFile(path, func(w io.Writer) (*m.ReportSummary, error) { return sc.GenerateVariation(ctx, w) })
}
