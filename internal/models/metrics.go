// Package models defines data structures for ttmdash
package models

import (
	"time"
)

// RawMetrics is the flat metrics record returned by the data-fetching
// collaborator. Keys are provider-shaped (e.g. "P_E_TTM", "Revenue_TTM") and
// values may be strings, numbers, or nil. The valuation engine normalizes
// and parses them, never this layer.
type RawMetrics map[string]any

// HistoryBar represents a single day's price data
type HistoryBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// HistorySeries is an ordered (oldest first) price history for a ticker.
// Empty on fetch failure; callers treat emptiness as "no history available".
type HistorySeries []HistoryBar

// Closes returns the closing prices in series order.
func (h HistorySeries) Closes() []float64 {
	closes := make([]float64, len(h))
	for i, bar := range h {
		closes[i] = bar.Close
	}
	return closes
}
