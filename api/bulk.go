package api

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	m "pairs.service/models"
)

const DefaultConcurrency = 4

// FetchFunc retrieves the daily closes of a single ticker.
type FetchFunc func(ctx context.Context, ticker string) (m.Series, error)

type BulkOptions struct {
	Concurrency int
	Limiter     *rate.Limiter // nil disables throttling
}

// FetchAll fans a per ticker fetch out and assembles the results keyed by ticker.
// A ticker that fails is absent from the result. If every ticker failed with a
// transport error (anything but ErrNoData), the whole request is reported as
// ErrProviderUnavailable.
func FetchAll(ctx context.Context, tickers []string, opts BulkOptions, logger logrus.FieldLogger, fetch FetchFunc) (map[string]m.Series, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var (
		mu       sync.Mutex
		results  = make(map[string]m.Series, len(tickers))
		failures = make(map[string]error)
	)

	var g errgroup.Group
	g.SetLimit(concurrency)

	for _, ticker := range tickers {
		g.Go(func() error {
			series, err := fetchOne(ctx, ticker, opts.Limiter, fetch)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[ticker] = err
				logger.WithField("ticker", ticker).WithError(err).Debug("ticker fetch failed")
				return nil
			}
			results[ticker] = series
			return nil
		})
	}

	_ = g.Wait() // workers never return errors, failures are collected per ticker

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	if len(results) == 0 && len(tickers) > 0 {
		transport := make([]error, 0, len(failures))
		for _, ticker := range tickers {
			if err := failures[ticker]; err != nil && !errors.Is(err, ErrNoData) {
				transport = append(transport, fmt.Errorf("%s: %w", ticker, err))
			}
		}
		if len(transport) == len(tickers) {
			return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, errors.Join(transport...))
		}
	}

	return results, nil
}

func fetchOne(ctx context.Context, ticker string, limiter *rate.Limiter, fetch FetchFunc) (m.Series, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("error waiting for rate limiter: %w", err)
		}
	}
	return fetch(ctx, ticker)
}
