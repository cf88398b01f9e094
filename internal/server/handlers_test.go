package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ttmdash/internal/app"
	"ttmdash/internal/common"
	"ttmdash/internal/models"
	"ttmdash/internal/services/valuation"
)

// mockMarketService implements interfaces.MarketService for handler tests
type mockMarketService struct {
	metrics    models.RawMetrics
	metricsErr error
	history    models.HistorySeries
	chart      []byte
	chartErr   error
}

func (m *mockMarketService) GetTickerMetrics(ctx context.Context, ticker string) (models.RawMetrics, error) {
	if m.metricsErr != nil {
		return nil, m.metricsErr
	}
	return m.metrics, nil
}

func (m *mockMarketService) GetHistory(ctx context.Context, ticker string) models.HistorySeries {
	return m.history
}

func (m *mockMarketService) RenderPriceChart(ticker string, history models.HistorySeries) ([]byte, error) {
	return m.chart, m.chartErr
}

func usableMetrics() models.RawMetrics {
	return models.RawMetrics{
		"Ticker":             "TEST",
		"Shares_Outstanding": 1000.0,
		"Price":              50.0,
		"Net_Income_TTM":     2000.0,
		"Total_Debt":         500.0,
		"Total_Cash":         100.0,
	}
}

func newTestServer(t *testing.T, market *mockMarketService) *Server {
	t.Helper()
	a := &app.App{
		Config:           common.NewDefaultConfig(),
		Logger:           common.NewSilentLogger(),
		MarketService:    market,
		ValuationService: valuation.NewService(common.NewSilentLogger()),
		StartupTime:      time.Now(),
	}
	return NewServer(a)
}

func doRequest(srv *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body), rec.Body.String())
	return body
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &mockMarketService{})

	rec := doRequest(srv, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestHandleHealth_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &mockMarketService{})

	rec := doRequest(srv, http.MethodPost, "/api/health")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleVersion(t *testing.T) {
	srv := newTestServer(t, &mockMarketService{})

	rec := doRequest(srv, http.MethodGet, "/api/version")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body, "version")
	assert.Contains(t, body, "build")
}

func TestHandleTickerMetrics(t *testing.T) {
	srv := newTestServer(t, &mockMarketService{metrics: usableMetrics()})

	rec := doRequest(srv, http.MethodGet, "/api/tickers/TEST/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "TEST", body["Ticker"])
	assert.Equal(t, 50.0, body["Price"])
	// No valuations merged without the flag
	for key := range body {
		assert.False(t, strings.HasPrefix(key, "Val_"), "unexpected valuation key %s", key)
	}
}

func TestHandleTickerMetrics_IncludeValuations(t *testing.T) {
	srv := newTestServer(t, &mockMarketService{metrics: usableMetrics()})

	rec := doRequest(srv, http.MethodGet, "/api/tickers/TEST/metrics?include_valuations=true")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "TEST", body["Ticker"])
	assert.Contains(t, body, "Val_P/E")
	assert.Contains(t, body, "Val_intrinsic_price")
	assert.Equal(t, 25.0, body["Val_P/E"])
}

func TestHandleTickerMetrics_FetchError(t *testing.T) {
	srv := newTestServer(t, &mockMarketService{metricsErr: fmt.Errorf("upstream down")})

	rec := doRequest(srv, http.MethodGet, "/api/tickers/TEST/metrics")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleTickerValuation_Summary(t *testing.T) {
	srv := newTestServer(t, &mockMarketService{metrics: usableMetrics()})

	rec := doRequest(srv, http.MethodGet, "/api/tickers/TEST/valuation")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "TEST", body["ticker"])
	assert.Equal(t, 25.0, body["P/E"])
	assert.NotNil(t, body["intrinsic_price"])
}

func TestHandleTickerValuation_UnknownMethod(t *testing.T) {
	srv := newTestServer(t, &mockMarketService{metrics: usableMetrics()})

	rec := doRequest(srv, http.MethodGet, "/api/tickers/TEST/valuation?method=montecarlo")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTickerValuation_DCFWithParams(t *testing.T) {
	srv := newTestServer(t, &mockMarketService{metrics: usableMetrics()})

	rec := doRequest(srv, http.MethodGet,
		"/api/tickers/TEST/valuation?method=dcf&years=10&growth=0.05&discount=0.12")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Contains(t, body, "dcf_pv")
	assert.NotNil(t, body["dcf_pv"])
	assert.NotNil(t, body["intrinsic_price"])
}

func TestHandleTickerValuation_DCFTerminalGrowthGuard(t *testing.T) {
	srv := newTestServer(t, &mockMarketService{metrics: usableMetrics()})

	rec := doRequest(srv, http.MethodGet,
		"/api/tickers/TEST/valuation?method=dcf&discount=0.02&terminal_growth=0.05")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Nil(t, body["dcf_pv"])
	assert.NotNil(t, body["fcf_ttm_estimate"])
}

func TestHandleTickerValuation_UnusableMetrics(t *testing.T) {
	srv := newTestServer(t, &mockMarketService{metrics: models.RawMetrics{}})

	rec := doRequest(srv, http.MethodGet, "/api/tickers/TEST/valuation")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleTickerHistory(t *testing.T) {
	history := models.HistorySeries{
		{Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Close: 100},
		{Date: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), Close: 101},
	}
	srv := newTestServer(t, &mockMarketService{history: history})

	rec := doRequest(srv, http.MethodGet, "/api/tickers/TEST/history")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["bars"])
	assert.Len(t, body["series"], 2)
}

func TestHandleTickerChart(t *testing.T) {
	history := models.HistorySeries{
		{Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Close: 100},
		{Date: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), Close: 101},
	}
	srv := newTestServer(t, &mockMarketService{history: history, chart: []byte("png-bytes")})

	rec := doRequest(srv, http.MethodGet, "/api/tickers/TEST/chart.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", rec.Body.String())
}

func TestHandleTickerChart_NoHistory(t *testing.T) {
	srv := newTestServer(t, &mockMarketService{})

	rec := doRequest(srv, http.MethodGet, "/api/tickers/TEST/chart.png")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouteTickers_UnknownSubpath(t *testing.T) {
	srv := newTestServer(t, &mockMarketService{})

	rec := doRequest(srv, http.MethodGet, "/api/tickers/TEST/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDashboard(t *testing.T) {
	srv := newTestServer(t, &mockMarketService{})

	rec := doRequest(srv, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Stock TTM Dashboard")
}

func TestHandleDashboard_UnknownPath(t *testing.T) {
	srv := newTestServer(t, &mockMarketService{})

	rec := doRequest(srv, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
