package calculator

import (
	"errors"
	"math"

	"StockWatch/internal/model"
)

// PriceRange scans the most recent n candles and returns the highest high and lowest low.
func PriceRange(history model.PriceHistory, n int) (high, low float64, err error) {
	if len(history) == 0 {
		return 0, 0, errors.New("no candles provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, c := range history.Last(n) {
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}
	return high, low, nil
}

// RangePosition returns where price sits within [low, high], clamped to 0.0~1.0.
func RangePosition(price, high, low float64) float64 {
	if high <= low {
		return 0.5
	}
	pos := (price - low) / (high - low)
	return math.Max(0, math.Min(1, pos))
}
