package domain

import "errors"

// Sentinel errors for the failure taxonomy. Callers match with errors.Is;
// degenerate ratios (zero variance, zero loss) are never errors — they are
// substituted with defined fallback values at the computation site.
var (
	// ErrInsufficientData means a series is shorter than the minimum
	// window required by an indicator or metric.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrMissingMarketData means the data provider failed or returned an
	// empty series.
	ErrMissingMarketData = errors.New("missing market data")

	// ErrEmptyPortfolio means no holding contributes positive value.
	ErrEmptyPortfolio = errors.New("no holdings with positive value")
)
