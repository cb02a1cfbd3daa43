package core

import "errors"

var (
	// ErrInsufficientData means a pair had fewer than two aligned rows, the pair is skipped.
	ErrInsufficientData = errors.New("insufficient aligned observations")

	// ErrDegenerateVariance means the explanatory leg is constant over the window, the pair is skipped.
	ErrDegenerateVariance = errors.New("explanatory series has zero variance")

	ErrNoUsableSeries   = errors.New("no usable series after ingestion")
	ErrNoRegressedPairs = errors.New("no pair could be regressed")
)
