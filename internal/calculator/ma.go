package calculator

import (
	"errors"
	"math"

	"StockWatch/internal/model"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	window := prices[len(prices)-period:]
	sum := 0.0
	for _, p := range window {
		sum += p
	}
	if math.IsInf(sum, 0) {
		// Prices near the float64 limit overflow the sum; average term by term.
		mean := 0.0
		for _, p := range window {
			mean += p / float64(period)
		}
		return mean, nil
	}
	return sum / float64(period), nil
}

// MovingAverage returns the mean close of the last period candles.
// A history shorter than period yields the most recent close, or 0 when empty.
func MovingAverage(history model.PriceHistory, period int) float64 {
	if len(history) == 0 {
		return 0
	}
	ma, err := CalculateSMA(history.Closes(), period)
	if err != nil {
		return history[len(history)-1].Close
	}
	return ma
}

// Indicators computes MA5, MA10, MA20 and RSI(14) from scratch.
func Indicators(history model.PriceHistory) model.IndicatorSet {
	return model.IndicatorSet{
		MA5:  MovingAverage(history, 5),
		MA10: MovingAverage(history, 10),
		MA20: MovingAverage(history, 20),
		RSI:  RSI(history, DefaultRSIPeriod),
	}
}
