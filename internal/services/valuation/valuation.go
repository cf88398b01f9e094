package valuation

import (
	"ttmdash/internal/models"
)

// priceKeys are the normalized keys checked, in order, when no explicit price
// is supplied. Covers both flat provider records and info-style quote dumps.
var priceKeys = []string{
	"price",
	"currentprice",
	"lastprice",
	"previousclose",
	"regularmarketprice",
	"regularmarketpreviousclose",
}

// Valuation holds the fully-resolved financial state of a ticker. Every field
// is nil unless it was parsed from the input record or derived from other
// fields during construction; the derivation pass runs exactly once and the
// entity is read-only afterward.
type Valuation struct {
	Ticker  string
	History models.HistorySeries

	Price           *float64
	Shares          *float64
	MarketCap       *float64
	EnterpriseValue *float64
	RevenueTTM      *float64
	EBITTTM         *float64
	NetIncomeTTM    *float64
	TotalDebt       *float64
	TotalCash       *float64
	CapexTTM        *float64
	DeprTTM         *float64
	ChangeWC        *float64
	TaxRate         *float64
	PriceToBook     *float64
	PE              *float64
	PS              *float64
	DividendRate    *float64
	DividendYield   *float64

	norm map[string]any
}

// New constructs a Valuation from a ticker, a raw metrics record (nil treated
// as empty), an optional history series (only carried for availability
// checks), and an optional explicit price. Construction never
// fails: unparseable or absent values simply leave fields nil.
func New(ticker string, metrics models.RawMetrics, history models.HistorySeries, price *float64) *Valuation {
	v := &Valuation{
		Ticker:  ticker,
		History: history,
		norm:    normalizeMetrics(metrics),
	}

	if price != nil {
		v.Price = price
	} else {
		v.Price = v.extractPrice()
	}

	v.Shares = v.number("shares_outstanding")
	v.MarketCap = v.number("market_cap")
	v.EnterpriseValue = v.number("enterprise_value")
	v.RevenueTTM = v.number("revenue_ttm")
	v.EBITTTM = v.first("ebit_ttm", "operating_income_ttm")
	v.NetIncomeTTM = v.number("net_income_ttm")
	v.TotalDebt = v.number("total_debt")
	v.TotalCash = v.number("total_cash")
	v.CapexTTM = v.number("capital_expenditures_ttm")
	v.DeprTTM = v.number("depreciation_amortization_ttm")
	v.ChangeWC = v.number("change_in_working_capital_ttm")
	v.TaxRate = v.number("tax_rate_ttm")
	if v.TaxRate == nil {
		v.TaxRate = v.inferTaxRate()
	}
	v.PriceToBook = v.first("p_b", "price_to_book")
	v.PE = v.first("p_e_ttm", "trailingpe", "pe")
	v.PS = v.first("p_s_ttm", "trailingsales", "ps")
	v.DividendRate = v.first("dividend_rate", "dividend")
	v.DividendYield = v.number("dividend_yield")

	v.fillDerived()

	return v
}

// number resolves a single canonical key to a parsed float. When the key is
// absent (or present but nil), a second pass matches with all underscores
// stripped from both sides, so "p_e_ttm" finds a "trailingPE"-shaped key.
func (v *Valuation) number(key string) *float64 {
	if key == "" {
		return nil
	}
	k := NormalizeKey(key)
	val, ok := v.norm[k]
	if !ok || val == nil {
		flat := stripUnderscores(k)
		for nk, nv := range v.norm {
			if stripUnderscores(nk) == flat {
				val = nv
				break
			}
		}
	}
	return ParseNumber(val)
}

// first resolves a list of alias keys in priority order, returning the first
// key that parses to a number.
func (v *Valuation) first(keys ...string) *float64 {
	for _, k := range keys {
		if n := v.number(k); n != nil {
			return n
		}
	}
	return nil
}

// extractPrice reads the price from the normalized record.
func (v *Valuation) extractPrice() *float64 {
	for _, k := range priceKeys {
		if raw, ok := v.norm[k]; ok && raw != nil {
			if p := ParseNumber(raw); p != nil {
				return p
			}
		}
	}
	return nil
}

// inferTaxRate estimates the effective tax rate as tax provision over pretax
// income when no direct tax rate field is present. Requires both figures and
// a nonzero denominator.
func (v *Valuation) inferTaxRate() *float64 {
	provision := v.first("tax_provision", "tax_ttm", "tax")
	pretax := v.first("pretax_income", "ebt_ttm")
	if provision == nil || pretax == nil || *pretax == 0 {
		return nil
	}
	return floatPtr(*provision / *pretax)
}

// fillDerived backfills missing fundamentals from whatever is present. Steps
// run in a fixed order; each step only fires when its target is still nil and
// may read the outputs of earlier steps, never later ones. The dependency
// graph is acyclic, so a single pass suffices.
func (v *Valuation) fillDerived() {
	if v.Price == nil {
		v.Price = v.extractPrice()
	}

	if v.MarketCap == nil && v.Shares != nil && v.Price != nil {
		v.MarketCap = floatPtr(*v.Shares * *v.Price)
	}

	if v.Shares == nil && v.MarketCap != nil && v.Price != nil && *v.Price != 0 {
		v.Shares = floatPtr(*v.MarketCap / *v.Price)
	}

	if v.EnterpriseValue == nil && v.MarketCap != nil {
		v.EnterpriseValue = floatPtr(*v.MarketCap + valueOrZero(v.TotalDebt) - valueOrZero(v.TotalCash))
	}

	if v.RevenueTTM == nil && v.PS != nil && v.MarketCap != nil && *v.PS != 0 {
		v.RevenueTTM = floatPtr(*v.MarketCap / *v.PS)
	}

	if v.NetIncomeTTM == nil && v.PE != nil && v.MarketCap != nil && *v.PE != 0 {
		v.NetIncomeTTM = floatPtr(*v.MarketCap / *v.PE)
	}

	if v.DividendYield == nil && v.DividendRate != nil && v.Price != nil && *v.Price != 0 {
		v.DividendYield = floatPtr(*v.DividendRate / *v.Price)
	}

	if v.TaxRate == nil {
		v.TaxRate = v.inferTaxRate()
	}
}
