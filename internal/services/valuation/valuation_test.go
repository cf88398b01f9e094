package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ttmdash/internal/models"
)

func TestDeriveMarketCapFromShares(t *testing.T) {
	v := New("TEST", models.RawMetrics{
		"Shares_Outstanding": 100.0,
		"Price":              10.0,
	}, nil, nil)

	require.NotNil(t, v.MarketCap)
	assert.Equal(t, 1000.0, *v.MarketCap)
}

func TestDeriveSharesFromMarketCap(t *testing.T) {
	v := New("TEST", models.RawMetrics{
		"Market_Cap": 1000.0,
		"Price":      10.0,
	}, nil, nil)

	require.NotNil(t, v.Shares)
	assert.Equal(t, 100.0, *v.Shares)
}

func TestDerivationRoundTripConsistent(t *testing.T) {
	// A consistent (shares, price, market cap) triple derives the same values
	// in both directions.
	fromShares := New("TEST", models.RawMetrics{"Shares_Outstanding": 100.0, "Price": 10.0}, nil, nil)
	fromCap := New("TEST", models.RawMetrics{"Market_Cap": 1000.0, "Price": 10.0}, nil, nil)

	require.NotNil(t, fromShares.MarketCap)
	require.NotNil(t, fromCap.Shares)
	assert.Equal(t, 1000.0, *fromShares.MarketCap)
	assert.Equal(t, 100.0, *fromCap.Shares)
}

func TestDeriveEnterpriseValue(t *testing.T) {
	v := New("TEST", models.RawMetrics{
		"Market_Cap": 1000.0,
		"Total_Debt": 300.0,
		"Total_Cash": 100.0,
	}, nil, nil)

	require.NotNil(t, v.EnterpriseValue)
	assert.Equal(t, 1200.0, *v.EnterpriseValue)
}

func TestDeriveEnterpriseValueMissingDebtCash(t *testing.T) {
	v := New("TEST", models.RawMetrics{"Market_Cap": 1000.0}, nil, nil)

	require.NotNil(t, v.EnterpriseValue)
	assert.Equal(t, 1000.0, *v.EnterpriseValue)
}

func TestDeriveRevenueAndNetIncomeFromMultiples(t *testing.T) {
	v := New("TEST", models.RawMetrics{
		"Market_Cap": 50000.0,
		"P_S_TTM":    5.0,
		"P_E_TTM":    25.0,
	}, nil, nil)

	require.NotNil(t, v.RevenueTTM)
	assert.Equal(t, 10000.0, *v.RevenueTTM)
	require.NotNil(t, v.NetIncomeTTM)
	assert.Equal(t, 2000.0, *v.NetIncomeTTM)
}

func TestDeriveDividendYield(t *testing.T) {
	v := New("TEST", models.RawMetrics{
		"Dividend_Rate": 2.0,
		"Price":         50.0,
	}, nil, nil)

	require.NotNil(t, v.DividendYield)
	assert.Equal(t, 0.04, *v.DividendYield)
}

func TestDirectValuesNotOverwritten(t *testing.T) {
	v := New("TEST", models.RawMetrics{
		"Shares_Outstanding": 100.0,
		"Price":              10.0,
		"Market_Cap":         9999.0, // deliberately inconsistent
	}, nil, nil)

	require.NotNil(t, v.MarketCap)
	assert.Equal(t, 9999.0, *v.MarketCap)
}

func TestExplicitPriceWinsOverRecord(t *testing.T) {
	price := 42.0
	v := New("TEST", models.RawMetrics{"Price": 10.0}, nil, &price)

	require.NotNil(t, v.Price)
	assert.Equal(t, 42.0, *v.Price)
}

func TestPriceExtractedFromInfoStyleKeys(t *testing.T) {
	v := New("TEST", models.RawMetrics{"regularMarketPrice": 17.5}, nil, nil)

	require.NotNil(t, v.Price)
	assert.Equal(t, 17.5, *v.Price)
}

func TestAliasLookupWithoutUnderscores(t *testing.T) {
	// "trailingPE" normalizes to "trailingpe" which matches the p_e_ttm alias
	// chain; "totaldebt" matches "total_debt" via underscore-stripped compare.
	v := New("TEST", models.RawMetrics{
		"trailingPE": 18.0,
		"totaldebt":  500.0,
	}, nil, nil)

	require.NotNil(t, v.PE)
	assert.Equal(t, 18.0, *v.PE)
	require.NotNil(t, v.TotalDebt)
	assert.Equal(t, 500.0, *v.TotalDebt)
}

func TestTaxRateInference(t *testing.T) {
	v := New("TEST", models.RawMetrics{
		"Tax_Provision": 210.0,
		"Pretax_Income": 1000.0,
	}, nil, nil)

	require.NotNil(t, v.TaxRate)
	assert.InDelta(t, 0.21, *v.TaxRate, 1e-9)
}

func TestTaxRateInferenceZeroDenominator(t *testing.T) {
	v := New("TEST", models.RawMetrics{
		"Tax_Provision": 210.0,
		"Pretax_Income": 0.0,
	}, nil, nil)

	assert.Nil(t, v.TaxRate)
}

func TestUnparseableValuesYieldNilFields(t *testing.T) {
	v := New("TEST", models.RawMetrics{
		"Revenue_TTM": "not a number",
		"EBIT_TTM":    nil,
	}, nil, nil)

	assert.Nil(t, v.RevenueTTM)
	assert.Nil(t, v.EBITTTM)
}

func TestStringFormatsResolvedAtConstruction(t *testing.T) {
	v := New("TEST", models.RawMetrics{
		"Market_Cap":   "2.3B",
		"Total_Debt":   "(500)",
		"Tax_Rate_TTM": "12.5%",
	}, nil, nil)

	require.NotNil(t, v.MarketCap)
	assert.Equal(t, 2.3e9, *v.MarketCap)
	require.NotNil(t, v.TotalDebt)
	assert.Equal(t, -500.0, *v.TotalDebt)
	require.NotNil(t, v.TaxRate)
	assert.Equal(t, 0.125, *v.TaxRate)
}

func TestEmptyMetricsConstructs(t *testing.T) {
	v := New("TEST", nil, nil, nil)

	assert.Nil(t, v.Price)
	assert.Nil(t, v.MarketCap)
	assert.Nil(t, v.EnterpriseValue)
}
