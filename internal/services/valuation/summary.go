package valuation

import (
	"ttmdash/internal/models"
)

// Summary aggregates the ticker with all three models evaluated at default
// parameters. The blocks are merged in order (relative, DCF, Gordon) with
// later entries overwriting earlier ones on key collision. The blocks do not
// share keys today, but extensions must preserve that merge order.
func (v *Valuation) Summary() models.ValuationRecord {
	out := models.ValuationRecord{"ticker": v.Ticker}
	for k, val := range v.RelativeValue() {
		out[k] = val
	}
	for k, val := range v.DCF(models.DefaultDCFParams()) {
		out[k] = val
	}
	for k, val := range v.GordonGrowth(models.DefaultGordonParams()) {
		out[k] = val
	}
	return out
}
