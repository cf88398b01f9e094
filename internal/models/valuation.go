package models

// Valuation method selectors accepted by the engine entry point.
const (
	MethodSummary  = "summary"
	MethodRelative = "relative"
	MethodDCF      = "dcf"
	MethodGordon   = "gordon"
)

// ValuationRecord is a valuation result record. Values are *float64 (nil for
// underivable figures) or plain strings (e.g. the ticker in a summary).
type ValuationRecord map[string]any

// DCFParams holds the tunable inputs of the discounted cash flow model.
type DCFParams struct {
	Years            int      `json:"years"`
	Growth           float64  `json:"growth"`
	Discount         float64  `json:"discount"`
	TerminalGrowth   float64  `json:"terminal_growth"`
	TerminalMultiple *float64 `json:"terminal_multiple,omitempty"`
}

// DefaultDCFParams returns the standard 5-year projection parameters.
func DefaultDCFParams() DCFParams {
	return DCFParams{
		Years:          5,
		Growth:         0.03,
		Discount:       0.10,
		TerminalGrowth: 0.02,
	}
}

// GordonParams holds the inputs of the dividend growth model.
type GordonParams struct {
	RequiredReturn float64 `json:"required_return"`
	Growth         float64 `json:"growth"`
}

// DefaultGordonParams returns the standard dividend growth inputs.
func DefaultGordonParams() GordonParams {
	return GordonParams{
		RequiredReturn: 0.10,
		Growth:         0.02,
	}
}
