package valuation

import (
	"math"

	"ttmdash/internal/models"
)

// fallbackTaxRate is assumed when EBIT-based FCF estimation has no tax rate.
const fallbackTaxRate = 0.25

// EstimateFCFTTM estimates trailing free cash flow from available items:
//
//	FCF = net income + D&A - capex - change in working capital
//
// with missing adjustment items treated as zero. When net income is absent it
// falls back to EBIT x (1 - tax rate) - capex. Returns nil when neither base
// figure is available.
func (v *Valuation) EstimateFCFTTM() *float64 {
	if v.NetIncomeTTM != nil {
		return floatPtr(*v.NetIncomeTTM + valueOrZero(v.DeprTTM) - valueOrZero(v.CapexTTM) - valueOrZero(v.ChangeWC))
	}

	if v.EBITTTM != nil {
		tax := fallbackTaxRate
		if v.TaxRate != nil {
			tax = *v.TaxRate
		}
		return floatPtr(*v.EBITTTM*(1-tax) - valueOrZero(v.CapexTTM))
	}

	return nil
}

// DCF performs a simple two-stage discounted cash flow valuation: constant
// growth from the TTM FCF estimate, then either an exit multiple or a Gordon
// growth terminal value. The Gordon terminal value requires the discount rate
// to exceed the terminal growth rate; when the ordering is inverted only the
// FCF estimate is reported.
//
// Result keys: dcf_pv, equity_value, intrinsic_price, fcf_ttm_estimate.
func (v *Valuation) DCF(p models.DCFParams) map[string]*float64 {
	res := map[string]*float64{
		"dcf_pv":           nil,
		"equity_value":     nil,
		"intrinsic_price":  nil,
		"fcf_ttm_estimate": nil,
	}

	fcf0 := v.EstimateFCFTTM()
	res["fcf_ttm_estimate"] = fcf0
	if fcf0 == nil || p.Discount <= 0 || p.Years < 1 {
		return res
	}

	projections := make([]float64, p.Years)
	pvProjections := 0.0
	for y := 1; y <= p.Years; y++ {
		projections[y-1] = *fcf0 * math.Pow(1+p.Growth, float64(y))
		pvProjections += projections[y-1] / math.Pow(1+p.Discount, float64(y))
	}
	finalYear := projections[p.Years-1]

	var terminal float64
	if p.TerminalMultiple != nil && *p.TerminalMultiple != 0 {
		terminal = finalYear * *p.TerminalMultiple
	} else {
		if p.Discount <= p.TerminalGrowth {
			return res
		}
		terminal = finalYear * (1 + p.TerminalGrowth) / (p.Discount - p.TerminalGrowth)
	}

	pvTerminal := terminal / math.Pow(1+p.Discount, float64(p.Years))
	enterpriseValue := pvProjections + pvTerminal
	equityValue := enterpriseValue - valueOrZero(v.TotalDebt) + valueOrZero(v.TotalCash)

	res["dcf_pv"] = floatPtr(enterpriseValue)
	res["equity_value"] = floatPtr(equityValue)
	if v.Shares != nil && *v.Shares > 0 {
		res["intrinsic_price"] = floatPtr(equityValue / *v.Shares)
	}

	return res
}
