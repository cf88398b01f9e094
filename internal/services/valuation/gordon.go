package valuation

import (
	"ttmdash/internal/models"
)

// GordonGrowth values the ticker as a growing dividend perpetuity. The annual
// dividend comes from the dividend rate when present, otherwise from yield x
// price. The model is only valid when the required return exceeds the growth
// rate; when it does not, the dividend figure is still reported.
//
// Result keys: gordon_value, dividend_annual.
func (v *Valuation) GordonGrowth(p models.GordonParams) map[string]*float64 {
	res := map[string]*float64{
		"gordon_value":    nil,
		"dividend_annual": nil,
	}

	var dividend *float64
	switch {
	case v.DividendRate != nil:
		dividend = v.DividendRate
	case v.DividendYield != nil && v.Price != nil:
		dividend = floatPtr(*v.DividendYield * *v.Price)
	default:
		return res
	}
	res["dividend_annual"] = dividend

	if p.RequiredReturn <= p.Growth {
		return res
	}

	res["gordon_value"] = floatPtr(*dividend * (1 + p.Growth) / (p.RequiredReturn - p.Growth))
	return res
}
