package market

import (
	"testing"
)

func TestSMAOverlay(t *testing.T) {
	history := sampleHistory(5) // closes 100,101,102,103,104

	dates, values := smaOverlay(history, 3)
	if len(values) != 3 {
		t.Fatalf("expected 3 SMA points, got %d", len(values))
	}
	expected := []float64{101, 102, 103}
	for i, want := range expected {
		if values[i] != want {
			t.Errorf("SMA[%d]: expected %v, got %v", i, want, values[i])
		}
	}
	// Each point is anchored at the end of its window
	if !dates[0].Equal(history[2].Date) {
		t.Errorf("expected first SMA date %v, got %v", history[2].Date, dates[0])
	}
}

func TestSMAOverlay_ShortHistory(t *testing.T) {
	_, values := smaOverlay(sampleHistory(2), 3)
	if values != nil {
		t.Errorf("expected nil for history shorter than period, got %v", values)
	}
}

func TestRenderPriceChart_WithSMAOverlay(t *testing.T) {
	svc := NewService(&mockClient{}, nil)

	if _, err := svc.RenderPriceChart("AAPL", sampleHistory(smaPeriod+10)); err != nil {
		t.Fatalf("RenderPriceChart with SMA overlay failed: %v", err)
	}
}
