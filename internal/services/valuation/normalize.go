// Package valuation computes valuation estimates from heterogeneous,
// partially-missing TTM metrics records.
//
// A Valuation is constructed once per request from a raw metrics record; its
// fields are immutable afterward and every model method is a pure function of
// that state plus its own parameters. Missing or unparseable data degrades to
// nil fields; nothing in this package panics on bad input.
package valuation

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"ttmdash/internal/models"
)

// suffixedNumber matches a signed number with optional thousands separators
// and an optional k/m/b magnitude suffix ("2.3B", "1,200 m").
var suffixedNumber = regexp.MustCompile(`^([+-]?[\d,.]+)\s*([kKmMbB]?)$`)

// NormalizeKey canonicalizes a metrics key: lowercase, every maximal run of
// characters outside [0-9a-z] collapsed to a single underscore, and leading or
// trailing underscores trimmed. Normalization is idempotent.
func NormalizeKey(key string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(key) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// normalizeMetrics builds the canonical-key view of a raw record. Values are
// carried over unparsed. Key collisions resolve last-write-wins; collisions
// are not expected in well-formed input and are not an error.
func normalizeMetrics(raw models.RawMetrics) map[string]any {
	norm := make(map[string]any, len(raw))
	for k, v := range raw {
		nk := NormalizeKey(k)
		if nk == "" {
			continue
		}
		norm[nk] = v
	}
	return norm
}

// ParseNumber converts a raw metrics value to a float. Numeric types pass
// through; strings tolerate currency symbols, thousands separators,
// parenthesized negatives, percent signs, and k/m/b magnitude suffixes.
// Anything unparseable yields nil.
func ParseNumber(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return floatPtr(n)
	case float32:
		return floatPtr(float64(n))
	case int:
		return floatPtr(float64(n))
	case int64:
		return floatPtr(float64(n))
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil
		}
		return floatPtr(f)
	case string:
		return parseNumericString(n)
	default:
		return nil
	}
}

func parseNumericString(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// Accountant's negative: "(1,234)" means -1234
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(stripSeparators(strings.TrimSuffix(s, "%")), 64)
		if err != nil {
			return nil
		}
		f /= 100.0
		if neg {
			f = -f
		}
		return floatPtr(f)
	}

	if m := suffixedNumber.FindStringSubmatch(s); m != nil {
		f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			return nil
		}
		switch strings.ToLower(m[2]) {
		case "k":
			f *= 1e3
		case "m":
			f *= 1e6
		case "b":
			f *= 1e9
		}
		if neg {
			f = -f
		}
		return floatPtr(f)
	}

	f, err := strconv.ParseFloat(stripSeparators(s), 64)
	if err != nil {
		return nil
	}
	if neg {
		f = -f
	}
	return floatPtr(f)
}

// stripUnderscores flattens a normalized key for alias matching, so
// "p_e_ttm" and "pettm"-shaped keys compare equal.
func stripUnderscores(s string) string {
	return strings.ReplaceAll(s, "_", "")
}

// stripSeparators removes thousands separators and currency symbols.
func stripSeparators(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	return strings.TrimSpace(s)
}

func floatPtr(f float64) *float64 { return &f }

// valueOrZero treats a missing optional figure as zero.
func valueOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
