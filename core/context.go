package core

import (
	"context"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"pairs.service/catalog"
	m "pairs.service/models"
)

// SeriesProvider returns the daily closes of each ticker between start and end inclusive.
// Tickers it could not serve are absent from the map. An error means the whole request failed.
type SeriesProvider interface {
	FetchDailyCloses(ctx context.Context, tickers []string, start, end time.Time) (map[string]m.Series, error)
}

type Settings struct {
	Window          int
	LookbackDays    int
	Extremes        int
	LowFitThreshold float64
	Band            float64
	Footer          string

	ZScoreWindow      int
	VariationHorizons []int // business days
}

func DefaultSettings() Settings {
	return Settings{
		Window:          756,
		LookbackDays:    365,
		Extremes:        DefaultExtremes,
		LowFitThreshold: 0.1,
		Band:            1.5,
		Footer:          "Pairs Desk",

		ZScoreWindow:      DefaultZScoreWindow,
		VariationHorizons: slices.Clone(DefaultHorizons),
	}
}

// ServiceContext carries the read-only dependencies of a generation.
// A generation keeps all of its state local, so one context serves concurrent requests.
type ServiceContext struct {
	Provider SeriesProvider
	Catalog  *catalog.Catalog
	Logger   logrus.FieldLogger
	Settings Settings

	// Now is replaced in tests, defaults to time.Now
	Now func() time.Time

	// OnPage observes every page of every rendered document, optional
	OnPage func(number int, title string)
}

func (sc *ServiceContext) now() time.Time {
	if sc.Now != nil {
		return sc.Now()
	}
	return time.Now()
}

// dateRange ends yesterday and reaches back LookbackDays.
func (sc *ServiceContext) dateRange() (start, end time.Time) {
	end = sc.now().AddDate(0, 0, -1)
	start = end.AddDate(0, 0, -sc.Settings.LookbackDays)
	return
}
