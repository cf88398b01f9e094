package interfaces

import (
	"context"

	"ttmdash/internal/models"
)

// MarketService orchestrates metrics and history retrieval for a ticker
type MarketService interface {
	// GetTickerMetrics retrieves the TTM metrics record for a ticker
	GetTickerMetrics(ctx context.Context, ticker string) (models.RawMetrics, error)

	// GetHistory retrieves price history, degrading to an empty series on failure
	GetHistory(ctx context.Context, ticker string) models.HistorySeries

	// RenderPriceChart renders a PNG close-price chart from history bars
	RenderPriceChart(ticker string, history models.HistorySeries) ([]byte, error)
}

// ValuationService computes valuation estimates from a raw metrics record.
// Methods never panic; unusable input yields a nil record.
type ValuationService interface {
	// GetValue evaluates the selected method ("summary", "relative", "dcf",
	// "gordon") with default parameters. Returns nil for unusable input,
	// unknown methods, or any internal failure.
	GetValue(metrics models.RawMetrics, method string, history models.HistorySeries) models.ValuationRecord

	// GetDCF evaluates the DCF model with explicit parameters
	GetDCF(metrics models.RawMetrics, history models.HistorySeries, params models.DCFParams) models.ValuationRecord

	// MergeValuationsIntoMetrics returns a copy of metrics with valuation
	// entries added under the given key prefix. The input is not mutated.
	MergeValuationsIntoMetrics(metrics models.RawMetrics, valuations models.ValuationRecord, prefix string) models.RawMetrics
}
