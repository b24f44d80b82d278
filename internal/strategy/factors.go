package strategy

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"StockWatch/internal/model"
)

type trend int

const (
	trendRanging trend = iota
	trendBullish
	trendBearish
)

// classifyTrend compares the price against the moving-average stack.
// Bullish needs the price above every average and MA5 > MA10 > MA20.
// Bearish needs the price at or below every average.
func classifyTrend(price float64, ind model.IndicatorSet) trend {
	aboveMA5 := price > ind.MA5
	aboveMA10 := price > ind.MA10
	aboveMA20 := price > ind.MA20
	stacked := ind.MA5 > ind.MA10 && ind.MA10 > ind.MA20

	switch {
	case aboveMA5 && aboveMA10 && aboveMA20 && stacked:
		return trendBullish
	case !aboveMA5 && !aboveMA10 && !aboveMA20:
		return trendBearish
	default:
		return trendRanging
	}
}

// rsiNote flags overbought/oversold readings. Hold suggestions carry no note.
func rsiNote(signal model.Signal, rsi float64) string {
	switch {
	case signal == model.SignalHold:
		return ""
	case rsi < 30:
		return "超卖"
	case rsi > 70 && signal == model.SignalBuy:
		return "超买注意风险"
	case rsi > 70:
		return "超买"
	default:
		return ""
	}
}

func suggestionFor(signal model.Signal, rsi float64) string {
	note := rsiNote(signal, rsi)
	switch signal {
	case model.SignalBuy:
		return fmt.Sprintf("多头排列，股价站上各均线，短期趋势向好。RSI=%.0f%s，建议适量建仓。", rsi, note)
	case model.SignalSell:
		return fmt.Sprintf("空头排列，股价跌破各均线，短期趋势偏弱。RSI=%.0f%s，建议减仓观望。", rsi, note)
	default:
		return fmt.Sprintf("震荡走势，股价在均线间徘徊。RSI=%.0f，建议观望等待明确信号。", rsi)
	}
}

// roundIndicators rounds every indicator to two decimal places for display.
func roundIndicators(ind model.IndicatorSet) model.IndicatorSet {
	return model.IndicatorSet{
		MA5:  round2(ind.MA5),
		MA10: round2(ind.MA10),
		MA20: round2(ind.MA20),
		RSI:  round2(ind.RSI),
	}
}

// round2 maps non-finite values to 0; decimal cannot represent them.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
