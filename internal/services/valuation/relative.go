package valuation

// RelativeValue computes the relative multiples record: P/E, P/S, P/B,
// EV/Revenue, EV/EBIT, and Debt/Equity. Direct provider multiples win over
// derived ones; every underivable entry is present with a nil value.
func (v *Valuation) RelativeValue() map[string]*float64 {
	res := map[string]*float64{
		"P/E":         nil,
		"P/S":         nil,
		"P/B":         v.PriceToBook,
		"EV/Revenue":  nil,
		"EV/EBIT":     nil,
		"Debt/Equity": nil,
	}

	switch {
	case v.PE != nil:
		res["P/E"] = v.PE
	case v.MarketCap != nil && v.NetIncomeTTM != nil && *v.NetIncomeTTM != 0:
		res["P/E"] = floatPtr(*v.MarketCap / *v.NetIncomeTTM)
	}

	switch {
	case v.PS != nil:
		res["P/S"] = v.PS
	case v.MarketCap != nil && v.RevenueTTM != nil && *v.RevenueTTM != 0:
		res["P/S"] = floatPtr(*v.MarketCap / *v.RevenueTTM)
	}

	if v.EnterpriseValue != nil && v.RevenueTTM != nil && *v.RevenueTTM != 0 {
		res["EV/Revenue"] = floatPtr(*v.EnterpriseValue / *v.RevenueTTM)
	}

	if v.EnterpriseValue != nil && v.EBITTTM != nil && *v.EBITTTM != 0 {
		res["EV/EBIT"] = floatPtr(*v.EnterpriseValue / *v.EBITTTM)
	}

	// Equity is approximated by market cap; the ratio only makes sense when
	// equity exceeds debt, leaving a positive nonzero denominator.
	if v.MarketCap != nil && v.TotalDebt != nil {
		equity := *v.MarketCap
		if denom := equity - *v.TotalDebt; denom > 0 {
			res["Debt/Equity"] = floatPtr(*v.TotalDebt / denom)
		}
	}

	return res
}
