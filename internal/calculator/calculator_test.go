package calculator

import (
	"math"
	"testing"

	"StockWatch/internal/model"
)

func closes(values ...float64) model.PriceHistory {
	h := make(model.PriceHistory, len(values))
	for i, v := range values {
		h[i] = model.Candle{Open: v, Close: v, High: v + 1, Low: v - 1}
	}
	return h
}

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name    string
		history model.PriceHistory
		period  int
		want    float64
	}{
		{"empty", nil, 5, 0},
		{"short history uses last close", closes(10, 11, 12), 5, 12},
		{"exact period", closes(1, 2, 3, 4, 5), 5, 3},
		{"uses most recent window", closes(100, 1, 2, 3, 4, 5), 5, 3},
	}
	for _, tt := range tests {
		if got := MovingAverage(tt.history, tt.period); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: expected %.4f, got %.4f", tt.name, tt.want, got)
		}
	}
}

func TestMovingAverage_ConstantSeries(t *testing.T) {
	h := closes(7.5, 7.5, 7.5, 7.5, 7.5, 7.5, 7.5, 7.5, 7.5, 7.5, 7.5, 7.5)
	for _, p := range []int{1, 5, 10, 20} {
		if got := MovingAverage(h, p); got != 7.5 {
			t.Errorf("period %d: expected 7.5, got %f", p, got)
		}
	}
}

func TestMovingAverage_NearFloatLimit(t *testing.T) {
	got := MovingAverage(closes(1.7e308, 1.7e308, 1.7e308, 1.7e308, 1.7e308), 5)
	if math.IsInf(got, 0) || math.Abs(got-1.7e308)/1.7e308 > 1e-12 {
		t.Errorf("expected ~1.7e308, got %g", got)
	}
}

func TestRSI_OverflowingChanges(t *testing.T) {
	h := make(model.PriceHistory, 0, 16)
	for i := 0; i < 16; i++ {
		v := 1.7e308
		if i%2 == 0 {
			v = -v
		}
		h = append(h, model.Candle{Close: v})
	}
	if got := RSI(h, 14); got != 50 {
		t.Errorf("expected neutral 50 on overflow, got %f", got)
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	if got := RSI(closes(1, 2, 3), 14); got != 50 {
		t.Errorf("expected 50, got %f", got)
	}
	if got := RSI(nil, 14); got != 50 {
		t.Errorf("expected 50 for empty history, got %f", got)
	}
}

func TestRSI_Extremes(t *testing.T) {
	rising := make(model.PriceHistory, 0, 20)
	falling := make(model.PriceHistory, 0, 20)
	flat := make(model.PriceHistory, 0, 20)
	for i := 0; i < 20; i++ {
		rising = append(rising, model.Candle{Close: float64(10 + i)})
		falling = append(falling, model.Candle{Close: float64(100 - i)})
		flat = append(flat, model.Candle{Close: 42})
	}
	if got := RSI(rising, 14); got != 100 {
		t.Errorf("rising: expected 100, got %f", got)
	}
	if got := RSI(falling, 14); got != 0 {
		t.Errorf("falling: expected 0, got %f", got)
	}
	if got := RSI(flat, 14); got != 100 {
		t.Errorf("flat: expected 100 when there are no losses, got %f", got)
	}
}

func TestRSI_Mixed(t *testing.T) {
	// Alternating +2 / -1 over 14 changes: gains 14, losses 7, RS = 2.
	h := closes(10)
	price := 10.0
	for i := 0; i < 14; i++ {
		if i%2 == 0 {
			price += 2
		} else {
			price--
		}
		h = append(h, model.Candle{Close: price})
	}
	want := 100 - 100/(1+2.0)
	if got := RSI(h, 14); math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %.4f, got %.4f", want, got)
	}
}

func TestIndicators(t *testing.T) {
	h := closes(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	ind := Indicators(h)
	if ind.MA5 != 8 {
		t.Errorf("MA5: expected 8, got %f", ind.MA5)
	}
	if ind.MA10 != 5.5 {
		t.Errorf("MA10: expected 5.5, got %f", ind.MA10)
	}
	if ind.MA20 != 10 {
		t.Errorf("MA20: expected last close 10, got %f", ind.MA20)
	}
	if ind.RSI != 50 {
		t.Errorf("RSI: expected 50 for short history, got %f", ind.RSI)
	}
}

func TestPriceRange(t *testing.T) {
	if _, _, err := PriceRange(nil, 20); err == nil {
		t.Fatal("expected error for empty history")
	}
	high, low, err := PriceRange(closes(50, 10, 20, 30), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if high != 31 || low != 9 {
		t.Errorf("expected 31/9, got %.0f/%.0f", high, low)
	}
	if pos := RangePosition(20, 30, 10); pos != 0.5 {
		t.Errorf("expected 0.5, got %f", pos)
	}
	if pos := RangePosition(40, 30, 10); pos != 1 {
		t.Errorf("expected clamp to 1, got %f", pos)
	}
}
