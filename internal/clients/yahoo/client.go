// Package yahoo provides a client for the Yahoo Finance JSON API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"ttmdash/internal/common"
	"ttmdash/internal/interfaces"
	"ttmdash/internal/models"
)

var _ interfaces.MarketDataClient = (*Client)(nil)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// wrappedValue handles Yahoo's value envelopes, which may be an object
// {"raw": 1.23, "fmt": "1.23"}, a bare number, or an empty object {}.
type wrappedValue struct {
	Raw *float64
}

func (w *wrappedValue) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Raw *float64 `json:"raw"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil {
		w.Raw = envelope.Raw
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		w.Raw = &num
		return nil
	}
	// Unrecognized shapes degrade to missing rather than failing the fetch
	w.Raw = nil
	return nil
}

// Client implements the MarketDataClient interface against Yahoo Finance
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an upstream API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ttmdash/"+common.GetVersion())

	c.logger.Debug().Str("url", c.baseURL+path).Msg("yahoo API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// quoteSummaryResponse covers the modules the metrics record is built from
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *apiErrorDetail      `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	Price                priceModule         `json:"price"`
	SummaryDetail        summaryDetailModule `json:"summaryDetail"`
	DefaultKeyStatistics keyStatsModule      `json:"defaultKeyStatistics"`
	FinancialData        financialDataModule `json:"financialData"`
}

type priceModule struct {
	RegularMarketPrice         wrappedValue `json:"regularMarketPrice"`
	RegularMarketPreviousClose wrappedValue `json:"regularMarketPreviousClose"`
	Currency                   string       `json:"currency"`
}

type summaryDetailModule struct {
	PreviousClose wrappedValue `json:"previousClose"`
	MarketCap     wrappedValue `json:"marketCap"`
	TrailingPE    wrappedValue `json:"trailingPE"`
	NavPrice      wrappedValue `json:"navPrice"`
	DividendRate  wrappedValue `json:"dividendRate"`
	DividendYield wrappedValue `json:"dividendYield"`
}

type keyStatsModule struct {
	SharesOutstanding        wrappedValue `json:"sharesOutstanding"`
	EnterpriseValue          wrappedValue `json:"enterpriseValue"`
	PriceToBook              wrappedValue `json:"priceToBook"`
	PegRatio                 wrappedValue `json:"pegRatio"`
	PriceToSalesTrailing12Mo wrappedValue `json:"priceToSalesTrailing12Months"`
}

type financialDataModule struct {
	CurrentPrice wrappedValue `json:"currentPrice"`
	TotalDebt    wrappedValue `json:"totalDebt"`
	TotalCash    wrappedValue `json:"totalCash"`
}

type apiErrorDetail struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// timeseries statement items requested from the fundamentals endpoint.
// Quarterly income statement and cashflow items are summed over the four
// most recent quarters to build TTM figures; balance sheet items take the
// latest quarter only.
var (
	flowItems = []string{
		"quarterlyTotalRevenue",
		"quarterlyCostOfRevenue",
		"quarterlyOperatingExpense",
		"quarterlyOperatingIncome",
		"quarterlyEBITDA",
		"quarterlyNetIncome",
		"quarterlyPretaxIncome",
		"quarterlyTaxProvision",
		"quarterlyDepreciationAndAmortization",
		"quarterlyCapitalExpenditure",
		"quarterlyChangeInWorkingCapital",
	}
	stockItems = []string{
		"quarterlyTotalDebt",
		"quarterlyCashAndCashEquivalents",
		"quarterlyTotalAssets",
	}
)

type timeseriesResponse struct {
	Timeseries struct {
		Result []json.RawMessage `json:"result"`
		Error  *apiErrorDetail   `json:"error"`
	} `json:"timeseries"`
}

type timeseriesMeta struct {
	Meta struct {
		Type []string `json:"type"`
	} `json:"meta"`
}

type timeseriesPoint struct {
	AsOfDate      string       `json:"asOfDate"`
	ReportedValue wrappedValue `json:"reportedValue"`
}

// GetTickerMetrics retrieves the flat TTM metrics record for a ticker
func (c *Client) GetTickerMetrics(ctx context.Context, ticker string) (models.RawMetrics, error) {
	summary, err := c.getQuoteSummary(ctx, ticker)
	if err != nil {
		return nil, err
	}

	price := firstNonNil(
		summary.FinancialData.CurrentPrice.Raw,
		summary.Price.RegularMarketPrice.Raw,
		summary.SummaryDetail.PreviousClose.Raw,
		summary.Price.RegularMarketPreviousClose.Raw,
	)
	if price == nil {
		return nil, fmt.Errorf("no price available for %s", ticker)
	}

	series, err := c.getFundamentalsTimeseries(ctx, ticker)
	if err != nil {
		c.logger.Warn().Err(err).Str("ticker", ticker).Msg("fundamentals timeseries unavailable")
		series = map[string][]timeseriesPoint{}
	}

	// Fund-style tickers carry no income statement. When a NAV is published
	// the reduced record is still useful; otherwise the ticker is unusable.
	if len(series["quarterlyTotalRevenue"]) == 0 && len(series["quarterlyNetIncome"]) == 0 {
		if nav := summary.SummaryDetail.NavPrice.Raw; nav != nil {
			metrics := models.RawMetrics{
				"Ticker":   ticker,
				"Price":    *price,
				"Currency": currencyOrNA(summary.Price.Currency),
			}
			setMetric(metrics, "Shares_Outstanding", summary.DefaultKeyStatistics.SharesOutstanding.Raw)
			setMetric(metrics, "NAV", nav)
			setMetric(metrics, "P_E_TTM", summary.SummaryDetail.TrailingPE.Raw)
			return metrics, nil
		}
		return nil, fmt.Errorf("no financial statements for %s", ticker)
	}

	metrics := models.RawMetrics{
		"Ticker":   ticker,
		"Price":    *price,
		"Currency": currencyOrNA(summary.Price.Currency),
	}

	setMetric(metrics, "Shares_Outstanding", summary.DefaultKeyStatistics.SharesOutstanding.Raw)
	setMetric(metrics, "Market_Cap", summary.SummaryDetail.MarketCap.Raw)

	totalDebt := firstNonNil(summary.FinancialData.TotalDebt.Raw, latestValue(series["quarterlyTotalDebt"]))
	totalCash := firstNonNil(summary.FinancialData.TotalCash.Raw, latestValue(series["quarterlyCashAndCashEquivalents"]))

	ev := summary.DefaultKeyStatistics.EnterpriseValue.Raw
	if ev == nil || *ev == 0 {
		mcap := summary.SummaryDetail.MarketCap.Raw
		if mcap != nil && totalDebt != nil && totalCash != nil {
			derived := *mcap + *totalDebt - *totalCash
			ev = &derived
		} else {
			ev = nil
		}
	}
	setMetric(metrics, "Enterprise_Value", ev)
	setMetric(metrics, "Total_Debt", totalDebt)
	setMetric(metrics, "Total_Cash", totalCash)
	setMetric(metrics, "Total_Assets", latestValue(series["quarterlyTotalAssets"]))

	setMetric(metrics, "Revenue_TTM", ttmSum(series["quarterlyTotalRevenue"]))
	setMetric(metrics, "COGS_TTM", ttmSum(series["quarterlyCostOfRevenue"]))
	setMetric(metrics, "Operating_Expenses_TTM", ttmSum(series["quarterlyOperatingExpense"]))
	setMetric(metrics, "EBIT_TTM", ttmSum(series["quarterlyOperatingIncome"]))
	setMetric(metrics, "EBITDA_TTM", ttmSum(series["quarterlyEBITDA"]))
	setMetric(metrics, "Net_Income_TTM", ttmSum(series["quarterlyNetIncome"]))
	setMetric(metrics, "Depreciation_Amortization_TTM", ttmSum(series["quarterlyDepreciationAndAmortization"]))
	setMetric(metrics, "Capital_Expenditures_TTM", ttmSum(series["quarterlyCapitalExpenditure"]))
	setMetric(metrics, "Change_in_Working_Capital_TTM", ttmSum(series["quarterlyChangeInWorkingCapital"]))

	setMetric(metrics, "Tax_Rate_TTM", taxRate(ttmSum(series["quarterlyTaxProvision"]), ttmSum(series["quarterlyPretaxIncome"])))

	setMetric(metrics, "P_E_TTM", summary.SummaryDetail.TrailingPE.Raw)
	setMetric(metrics, "P_S_TTM", summary.DefaultKeyStatistics.PriceToSalesTrailing12Mo.Raw)
	setMetric(metrics, "P_B", summary.DefaultKeyStatistics.PriceToBook.Raw)
	setMetric(metrics, "PEG", summary.DefaultKeyStatistics.PegRatio.Raw)
	setMetric(metrics, "NAV", summary.SummaryDetail.NavPrice.Raw)

	setMetric(metrics, "Dividend_Rate", summary.SummaryDetail.DividendRate.Raw)
	setMetric(metrics, "Dividend_Yield", summary.SummaryDetail.DividendYield.Raw)

	return metrics, nil
}

func (c *Client) getQuoteSummary(ctx context.Context, ticker string) (*quoteSummaryResult, error) {
	params := url.Values{}
	params.Set("modules", "price,summaryDetail,defaultKeyStatistics,financialData")

	var resp quoteSummaryResponse
	path := fmt.Sprintf("/v10/finance/quoteSummary/%s", url.PathEscape(ticker))
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quote summary for %s: %s", ticker, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no quote summary for %s", ticker)
	}
	return &resp.QuoteSummary.Result[0], nil
}

func (c *Client) getFundamentalsTimeseries(ctx context.Context, ticker string) (map[string][]timeseriesPoint, error) {
	now := time.Now()
	params := url.Values{}
	params.Set("type", joinItems(flowItems, stockItems))
	params.Set("period1", fmt.Sprintf("%d", now.AddDate(-2, 0, 0).Unix()))
	params.Set("period2", fmt.Sprintf("%d", now.Unix()))
	params.Set("merge", "false")

	var resp timeseriesResponse
	path := fmt.Sprintf("/ws/fundamentals-timeseries/v1/finance/timeseries/%s", url.PathEscape(ticker))
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if resp.Timeseries.Error != nil {
		return nil, fmt.Errorf("timeseries for %s: %s", ticker, resp.Timeseries.Error.Description)
	}

	// Each result element carries its points under a key named after the
	// item type, so decode in two passes: meta first, then the data array.
	series := make(map[string][]timeseriesPoint, len(resp.Timeseries.Result))
	for _, raw := range resp.Timeseries.Result {
		var meta timeseriesMeta
		if err := json.Unmarshal(raw, &meta); err != nil || len(meta.Meta.Type) == 0 {
			continue
		}
		item := meta.Meta.Type[0]

		var element map[string]json.RawMessage
		if err := json.Unmarshal(raw, &element); err != nil {
			continue
		}
		data, ok := element[item]
		if !ok {
			continue
		}
		var points []timeseriesPoint
		if err := json.Unmarshal(data, &points); err != nil {
			continue
		}
		series[item] = points
	}

	return series, nil
}

// chartResponse covers the v8 chart endpoint
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiErrorDetail `json:"error"`
	} `json:"chart"`
}

// GetHistory retrieves the last 12 months of daily price bars
func (c *Client) GetHistory(ctx context.Context, ticker string) (models.HistorySeries, error) {
	params := url.Values{}
	params.Set("range", "1y")
	params.Set("interval", "1d")

	var resp chartResponse
	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(ticker))
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart for %s: %s", ticker, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no chart data for %s", ticker)
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	var adjClose []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjClose = result.Indicators.AdjClose[0].AdjClose
	}

	series := make(models.HistorySeries, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// Days with no trade come through as nulls; skip them
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		bar := models.HistoryBar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			bar.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			bar.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			bar.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		bar.AdjClose = bar.Close
		if i < len(adjClose) && adjClose[i] != nil {
			bar.AdjClose = *adjClose[i]
		}
		series = append(series, bar)
	}

	return series, nil
}

// ttmSum adds the four most recent reported quarters. Fewer than four
// quarters still sum (a young listing has a short trailing window); an
// empty series yields nil.
func ttmSum(points []timeseriesPoint) *float64 {
	var (
		sum   float64
		found int
	)
	for i := len(points) - 1; i >= 0 && found < 4; i-- {
		if points[i].ReportedValue.Raw == nil {
			continue
		}
		sum += *points[i].ReportedValue.Raw
		found++
	}
	if found == 0 {
		return nil
	}
	return &sum
}

// latestValue returns the most recent reported value in a series
func latestValue(points []timeseriesPoint) *float64 {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].ReportedValue.Raw != nil {
			return points[i].ReportedValue.Raw
		}
	}
	return nil
}

func taxRate(provision, pretax *float64) *float64 {
	if provision == nil || pretax == nil || *pretax == 0 {
		return nil
	}
	r := *provision / *pretax
	return &r
}

func firstNonNil(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// setMetric stores a float value, or an explicit nil for missing data so the
// record always carries the full key set
func setMetric(m models.RawMetrics, key string, v *float64) {
	if v == nil {
		m[key] = nil
		return
	}
	m[key] = *v
}

func currencyOrNA(currency string) string {
	if currency == "" {
		return "N/A"
	}
	return currency
}

func joinItems(groups ...[]string) string {
	var out string
	for _, group := range groups {
		for _, item := range group {
			if out != "" {
				out += ","
			}
			out += item
		}
	}
	return out
}
