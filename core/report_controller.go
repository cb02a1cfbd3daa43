package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	m "pairs.service/models"
	"pairs.service/report"
)

// Generate runs one report generation and writes the document to w. Nothing is written
// to w unless the whole document rendered.
func (sc *ServiceContext) Generate(ctx context.Context, w io.Writer) (*m.ReportSummary, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := sc.Logger.WithField("run_id", runID)

	pairs := GeneratePairs(RulesFromCatalog(sc.Catalog))
	universe := Universe(pairs)
	logger.WithFields(logrus.Fields{"pairs": len(pairs), "tickers": len(universe)}).Info("starting report generation")

	frame, err := sc.ingest(ctx, universe, logger).usable(logger)
	if err != nil {
		return nil, err
	}

	eligible := make([]m.Pair, 0, len(pairs))
	skipped := 0
	for _, p := range pairs {
		if !frame.Has(p.Explanatory) || !frame.Has(p.Dependent) {
			logger.WithField("pair", p.String()).Warn("pair skipped, leg without data")
			skipped++
			continue
		}
		eligible = append(eligible, p)
	}

	logger.WithField("pairs", len(eligible)).Infof("regressing pairs (time: %v)", time.Since(start))
	results := regressAll(frame, eligible, sc.Settings.Window, func(p m.Pair, err error) {
		logger.WithField("pair", p.String()).WithError(err).Warn("pair skipped")
		skipped++
	})

	table, err := Rank(results, sc.Catalog.PairLabel, sc.Settings.Extremes)
	if err != nil {
		logger.WithError(err).Error("error ranking residuals")
		return nil, err
	}

	assembler := report.NewAssembler(sc.reportOptions(logger), sc.Catalog.LabelOf)

	pages, err := assembler.Render(w, table, results)
	if err != nil {
		logger.WithError(err).Error("error rendering report")
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"regressed": len(results),
		"skipped":   skipped,
		"pages":     pages,
		"last_date": lastDate(results).Format(time.DateOnly),
	}).Infof("report generated (time: %v)", time.Since(start))

	return &m.ReportSummary{
		RunID:        runID,
		Kind:         m.KindPairs,
		Pairs:        len(pairs),
		Regressed:    len(results),
		Skipped:      skipped,
		FailedTicker: Prune(universe, frame.Tickers()),
		Pages:        pages,
		Extremes:     table.Extremes(),
	}, nil
}

func (sc *ServiceContext) reportOptions(logger logrus.FieldLogger) report.Options {
	return report.Options{
		Band:            sc.Settings.Band,
		LowFitThreshold: sc.Settings.LowFitThreshold,
		Footer:          sc.Settings.Footer,
		OnPage: func(number int, title string) {
			logger.WithFields(logrus.Fields{"page": number, "title": title}).Debug("page rendered")
			if sc.OnPage != nil {
				sc.OnPage(number, title)
			}
		},
	}
}

// GenerateToFile writes the pair report to path.
func (sc *ServiceContext) GenerateToFile(ctx context.Context, path string) (*m.ReportSummary, error) {
	return writeFile(path, func(w io.Writer) (*m.ReportSummary, error) { return sc.Generate(ctx, w) })
}

// writeFile renders into memory, then writes next to path and renames into place,
// so a failed generation leaves no file behind.
func writeFile(path string, generate func(w io.Writer) (*m.ReportSummary, error)) (*m.ReportSummary, error) {
	var buf bytes.Buffer
	summary, err := generate(&buf)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, fmt.Errorf("error creating temporary report file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := buf.WriteTo(tmp); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("error writing report file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("error closing report file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("error moving report into place: %w", err)
	}

	return summary, nil
}
