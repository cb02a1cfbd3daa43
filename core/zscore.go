package core

import (
	"cmp"
	"context"
	"io"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	m "pairs.service/models"
	"pairs.service/report"
)

const DefaultZScoreWindow = 20

// assetClass is one section of the z-score and variation reports, in report order.
type assetClass struct {
	portfolio string
	class     string
	category  m.Category
}

var assetClasses = []assetClass{
	{"Currency pairs", "Currencies", m.CategoryCurrency},
	{"Stock indices", "Indices", m.CategoryIndex},
	{"Commodities", "Commodities", m.CategoryCommodity},
}

func (sc *ServiceContext) assetUniverse() []string {
	var res []string
	for _, ac := range assetClasses {
		res = append(res, sc.Catalog.Members(ac.category)...)
	}
	return res
}

// ZScorePortfolio scores each member's latest close against the last window rows on which
// any member traded. Gaps are filled forward then backward, a member without a single close
// in the window is returned in missing.
func ZScorePortfolio(frame *m.Frame, members []string, window int, labelOf func(string) string) (portfolio m.Portfolio, missing []string) {
	if window <= 0 {
		window = DefaultZScoreWindow
	}
	portfolio.Window = window

	var rows []int
	for i := range frame.Len() {
		for _, id := range members {
			if frame.Has(id) && frame.Columns[id][i].Valid {
				rows = append(rows, i)
				break
			}
		}
	}
	if len(rows) > window {
		rows = rows[len(rows)-window:]
	}
	if len(rows) > 0 {
		portfolio.AsOf = frame.Dates[rows[len(rows)-1]]
	}

	for _, id := range members {
		if !frame.Has(id) {
			missing = append(missing, id)
			continue
		}
		values, ok := fillGaps(frame.Columns[id], rows)
		if !ok {
			missing = append(missing, id)
			continue
		}
		portfolio.Entries = append(portfolio.Entries, m.ZScoreEntry{
			ID:     id,
			Label:  labelOf(id),
			ZScore: zScore(values),
		})
	}

	slices.SortStableFunc(portfolio.Entries, func(a, b m.ZScoreEntry) int {
		return cmp.Compare(a.ZScore, b.ZScore)
	})
	return
}

// fillGaps picks rows out of column, forward filling then back filling missing closes.
func fillGaps(column []null.Float, rows []int) ([]float64, bool) {
	values := make([]float64, len(rows))
	first := -1
	for i, r := range rows {
		switch {
		case column[r].Valid:
			values[i] = column[r].Float64
			if first < 0 {
				first = i
			}
		case first >= 0:
			values[i] = values[i-1]
		}
	}
	if first < 0 {
		return nil, false
	}
	for i := range first {
		values[i] = values[first]
	}
	return values, true
}

// zScore of the last value with the sample deviation, zero when the window is flat.
func zScore(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(values, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return (values[len(values)-1] - mean) / std
}

// GenerateZScore renders one z-score page per asset class portfolio to w.
func (sc *ServiceContext) GenerateZScore(ctx context.Context, w io.Writer) (*m.ReportSummary, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := sc.Logger.WithFields(logrus.Fields{"run_id": runID, "report": m.KindZScore})

	universe := sc.assetUniverse()
	logger.WithField("tickers", len(universe)).Info("starting z-score generation")

	frame, err := sc.ingest(ctx, universe, logger).usable(logger)
	if err != nil {
		return nil, err
	}

	var portfolios []m.Portfolio
	assets := 0
	for _, ac := range assetClasses {
		p, missing := ZScorePortfolio(frame, sc.Catalog.Members(ac.category), sc.Settings.ZScoreWindow, sc.Catalog.LabelOf)
		p.Name, p.Category = ac.portfolio, ac.category

		l := logger.WithField("portfolio", p.Name)
		if len(missing) > 0 {
			l.WithField("missing", missing).Warn("assets left out of portfolio")
		}
		if len(p.Entries) == 0 {
			l.Warn("portfolio skipped, no usable assets")
			continue
		}
		portfolios = append(portfolios, p)
		assets += len(p.Entries)
	}
	if len(portfolios) == 0 {
		logger.Error("no portfolio to render, aborting")
		return nil, ErrNoUsableSeries
	}

	pages, err := report.RenderZScores(w, sc.reportOptions(logger), portfolios)
	if err != nil {
		logger.WithError(err).Error("error rendering z-score report")
		return nil, err
	}

	logger.WithFields(logrus.Fields{"assets": assets, "pages": pages}).
		Infof("z-score report generated (time: %v)", time.Since(start))

	return &m.ReportSummary{
		RunID:        runID,
		Kind:         m.KindZScore,
		Assets:       assets,
		FailedTicker: Prune(universe, frame.Tickers()),
		Pages:        pages,
	}, nil
}

func (sc *ServiceContext) GenerateZScoreToFile(ctx context.Context, path string) (*m.ReportSummary, error) {
	return writeFile(path, func(w io.Writer) (*m.ReportSummary, error) { return sc.GenerateZScore(ctx, w) })
}
