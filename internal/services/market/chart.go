package market

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"ttmdash/internal/models"
)

// RenderPriceChart renders a PNG line chart of closing prices over the last
// 12 months. Returns raw PNG bytes.
func (s *Service) RenderPriceChart(ticker string, history models.HistorySeries) ([]byte, error) {
	if len(history) < 2 {
		return nil, fmt.Errorf("need at least 2 history bars, got %d", len(history))
	}

	xValues := make([]time.Time, len(history))
	closeY := make([]float64, len(history))

	for i, bar := range history {
		xValues[i] = bar.Date
		closeY[i] = bar.Close
	}

	closeSeries := chart.TimeSeries{
		Name: "Close Price",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.0,
		},
		XValues: xValues,
		YValues: closeY,
	}

	series := []chart.Series{closeSeries}

	if smaDates, smaValues := smaOverlay(history, smaPeriod); len(smaValues) > 1 {
		series = append(series, chart.TimeSeries{
			Name: fmt.Sprintf("SMA %d", smaPeriod),
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: smaDates,
			YValues: smaValues,
		})
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Stock Price (Last 12 Months)", ticker),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
