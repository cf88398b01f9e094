package valuation

import (
	"fmt"

	"ttmdash/internal/common"
	"ttmdash/internal/interfaces"
	"ttmdash/internal/models"
)

// Service is the engine entry point used by the presentation layer. It never
// returns an error: unusable input, unknown methods, and unexpected failures
// all degrade to a nil record.
type Service struct {
	logger *common.Logger
}

// NewService creates a new valuation service.
func NewService(logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{logger: logger}
}

// GetValue evaluates the selected method against a raw metrics record with
// default model parameters. An empty or nil record is not usable and yields
// nil; a panic anywhere below is recovered and also yields nil.
func (s *Service) GetValue(metrics models.RawMetrics, method string, history models.HistorySeries) (record models.ValuationRecord) {
	if len(metrics) == 0 {
		return nil
	}
	defer s.recoverToNil(method, &record)

	v := s.build(metrics, history)
	switch method {
	case models.MethodSummary:
		return v.Summary()
	case models.MethodRelative:
		return toRecord(v.RelativeValue())
	case models.MethodDCF:
		return toRecord(v.DCF(models.DefaultDCFParams()))
	case models.MethodGordon:
		return toRecord(v.GordonGrowth(models.DefaultGordonParams()))
	}
	return nil
}

// GetDCF evaluates the DCF model with explicit parameters, for callers that
// tune years/growth/discount interactively.
func (s *Service) GetDCF(metrics models.RawMetrics, history models.HistorySeries, params models.DCFParams) (record models.ValuationRecord) {
	if len(metrics) == 0 {
		return nil
	}
	defer s.recoverToNil(models.MethodDCF, &record)

	return toRecord(s.build(metrics, history).DCF(params))
}

// MergeValuationsIntoMetrics returns a copy of metrics with every valuation
// entry added under the given key prefix. The input record is not mutated.
func (s *Service) MergeValuationsIntoMetrics(metrics models.RawMetrics, valuations models.ValuationRecord, prefix string) models.RawMetrics {
	return MergeValuationsIntoMetrics(metrics, valuations, prefix)
}

// MergeValuationsIntoMetrics is the package-level form of the merge helper.
func MergeValuationsIntoMetrics(metrics models.RawMetrics, valuations models.ValuationRecord, prefix string) models.RawMetrics {
	out := make(models.RawMetrics, len(metrics)+len(valuations))
	for k, v := range metrics {
		out[k] = v
	}
	for k, v := range valuations {
		out[prefix+k] = v
	}
	return out
}

// build constructs the valuation entity, resolving the ticker and explicit
// price from common record keys.
func (s *Service) build(metrics models.RawMetrics, history models.HistorySeries) *Valuation {
	ticker := extractTicker(metrics)
	price := ParseNumber(firstRawValue(metrics, "Price", "price"))
	return New(ticker, metrics, history, price)
}

func (s *Service) recoverToNil(method string, record *models.ValuationRecord) {
	if rec := recover(); rec != nil {
		s.logger.Error().
			Str("panic", fmt.Sprintf("%v", rec)).
			Str("method", method).
			Msg("Valuation recovered from panic")
		*record = nil
	}
}

// extractTicker tries the common ticker key spellings.
func extractTicker(metrics models.RawMetrics) string {
	for _, k := range []string{"Ticker", "ticker", "Symbol"} {
		if t, ok := metrics[k].(string); ok && t != "" {
			return t
		}
	}
	return ""
}

func firstRawValue(metrics models.RawMetrics, keys ...string) any {
	for _, k := range keys {
		if v, ok := metrics[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func toRecord(m map[string]*float64) models.ValuationRecord {
	out := make(models.ValuationRecord, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Ensure Service implements ValuationService
var _ interfaces.ValuationService = (*Service)(nil)
