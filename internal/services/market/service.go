// Package market orchestrates metrics and price history retrieval
package market

import (
	"context"
	"fmt"
	"strings"

	"ttmdash/internal/common"
	"ttmdash/internal/interfaces"
	"ttmdash/internal/models"
)

var _ interfaces.MarketService = (*Service)(nil)

// Service wraps the market data client and owns chart rendering
type Service struct {
	client interfaces.MarketDataClient
	logger *common.Logger
}

// NewService creates a new market service
func NewService(client interfaces.MarketDataClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		client: client,
		logger: logger,
	}
}

// GetTickerMetrics retrieves the TTM metrics record for a ticker
func (s *Service) GetTickerMetrics(ctx context.Context, ticker string) (models.RawMetrics, error) {
	ticker = normalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("empty ticker")
	}

	metrics, err := s.client.GetTickerMetrics(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetch metrics for %s: %w", ticker, err)
	}

	s.logger.Debug().Str("ticker", ticker).Int("fields", len(metrics)).Msg("fetched ticker metrics")
	return metrics, nil
}

// GetHistory retrieves price history, degrading to an empty series on failure
func (s *Service) GetHistory(ctx context.Context, ticker string) models.HistorySeries {
	ticker = normalizeTicker(ticker)
	if ticker == "" {
		return models.HistorySeries{}
	}

	history, err := s.client.GetHistory(ctx, ticker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("history unavailable")
		return models.HistorySeries{}
	}

	s.logger.Debug().Str("ticker", ticker).Int("bars", len(history)).Msg("fetched price history")
	return history
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
