package api

import "errors"

var (
	// ErrProviderUnavailable means the bulk request as a whole failed.
	ErrProviderUnavailable = errors.New("market data provider unavailable")

	// ErrNoData means the provider answered but has no closes for a ticker.
	ErrNoData = errors.New("no data for ticker")
)
