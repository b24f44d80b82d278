package calculator

import (
	"math"

	"StockWatch/internal/model"
)

// DefaultRSIPeriod is the lookback used for the dashboard RSI.
const DefaultRSIPeriod = 14

// RSI computes a simple-average relative strength index over the last period
// price changes. Returns 50 when fewer than period+1 candles are available
// or the changes overflow, and 100 when there were no losses.
func RSI(history model.PriceHistory, period int) float64 {
	if period <= 0 || len(history) < period+1 {
		return 50.0
	}

	closes := history.Closes()
	var gains, losses float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	if math.IsNaN(rsi) || math.IsInf(avgGain, 0) || math.IsInf(avgLoss, 0) {
		return 50.0
	}
	return rsi
}
