package market

import (
	"time"

	"ttmdash/internal/models"
)

// smaPeriod is the window for the moving-average chart overlay.
const smaPeriod = 50

// smaOverlay computes the rolling simple moving average of closing prices.
// The returned series starts at the first bar with a full window; shorter
// histories yield empty slices.
func smaOverlay(history models.HistorySeries, period int) ([]time.Time, []float64) {
	if period < 1 || len(history) < period {
		return nil, nil
	}

	dates := make([]time.Time, 0, len(history)-period+1)
	values := make([]float64, 0, len(history)-period+1)

	var sum float64
	for i, bar := range history {
		sum += bar.Close
		if i < period-1 {
			continue
		}
		if i >= period {
			sum -= history[i-period].Close
		}
		dates = append(dates, bar.Date)
		values = append(values, sum/float64(period))
	}

	return dates, values
}
