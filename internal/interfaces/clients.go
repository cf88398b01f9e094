// Package interfaces defines service contracts for ttmdash
package interfaces

import (
	"context"

	"ttmdash/internal/models"
)

// MarketDataClient provides access to the upstream market data API
type MarketDataClient interface {
	// GetTickerMetrics retrieves the flat TTM metrics record for a ticker.
	// Returns nil with an error when the ticker cannot be resolved at all.
	GetTickerMetrics(ctx context.Context, ticker string) (models.RawMetrics, error)

	// GetHistory retrieves the last 12 months of daily price bars
	GetHistory(ctx context.Context, ticker string) (models.HistorySeries, error)
}
