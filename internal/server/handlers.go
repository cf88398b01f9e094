package server

import (
	"net/http"
	"strconv"

	"ttmdash/internal/models"
)

const valuationPrefix = "Val_"

// handleTickerMetrics handles GET /api/tickers/{ticker}/metrics.
// With ?include_valuations=true the summary valuation is merged into the
// record under Val_-prefixed keys.
func (s *Server) handleTickerMetrics(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	metrics, err := s.app.MarketService.GetTickerMetrics(r.Context(), ticker)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	if boolParam(r, "include_valuations") {
		history := s.app.MarketService.GetHistory(r.Context(), ticker)
		valuations := s.app.ValuationService.GetValue(metrics, models.MethodSummary, history)
		metrics = s.app.ValuationService.MergeValuationsIntoMetrics(metrics, valuations, valuationPrefix)
	}

	WriteJSON(w, http.StatusOK, metrics)
}

// handleTickerValuation handles GET /api/tickers/{ticker}/valuation.
// method selects the model; dcf accepts years, growth, discount,
// terminal_growth, and terminal_multiple query parameters.
func (s *Server) handleTickerValuation(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	method := r.URL.Query().Get("method")
	if method == "" {
		method = models.MethodSummary
	}
	switch method {
	case models.MethodSummary, models.MethodRelative, models.MethodDCF, models.MethodGordon:
	default:
		WriteError(w, http.StatusBadRequest, "unknown valuation method: "+method)
		return
	}

	metrics, err := s.app.MarketService.GetTickerMetrics(r.Context(), ticker)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	history := s.app.MarketService.GetHistory(r.Context(), ticker)

	var record models.ValuationRecord
	if method == models.MethodDCF {
		record = s.app.ValuationService.GetDCF(metrics, history, s.dcfParams(r))
	} else {
		record = s.app.ValuationService.GetValue(metrics, method, history)
	}

	if record == nil {
		WriteError(w, http.StatusUnprocessableEntity, "valuation could not be computed for "+ticker)
		return
	}

	WriteJSON(w, http.StatusOK, record)
}

// dcfParams builds DCF parameters from configured defaults plus query overrides.
func (s *Server) dcfParams(r *http.Request) models.DCFParams {
	cfg := s.app.Config.Valuation
	params := models.DCFParams{
		Years:          cfg.Years,
		Growth:         cfg.Growth,
		Discount:       cfg.Discount,
		TerminalGrowth: cfg.TerminalGrowth,
	}

	q := r.URL.Query()
	if v := q.Get("years"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Years = n
		}
	}
	if v := floatParam(q.Get("growth")); v != nil {
		params.Growth = *v
	}
	if v := floatParam(q.Get("discount")); v != nil {
		params.Discount = *v
	}
	if v := floatParam(q.Get("terminal_growth")); v != nil {
		params.TerminalGrowth = *v
	}
	params.TerminalMultiple = floatParam(q.Get("terminal_multiple"))

	return params
}

// handleTickerHistory handles GET /api/tickers/{ticker}/history.
func (s *Server) handleTickerHistory(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	history := s.app.MarketService.GetHistory(r.Context(), ticker)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ticker": ticker,
		"bars":   len(history),
		"series": history,
	})
}

// handleTickerChart handles GET /api/tickers/{ticker}/chart.png.
func (s *Server) handleTickerChart(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	history := s.app.MarketService.GetHistory(r.Context(), ticker)
	if len(history) < 2 {
		WriteError(w, http.StatusNotFound, "no price history for "+ticker)
		return
	}

	png, err := s.app.MarketService.RenderPriceChart(ticker, history)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "chart rendering failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func boolParam(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func floatParam(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
