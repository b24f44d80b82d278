package strategy

import (
	"context"

	"StockWatch/internal/calculator"
	"StockWatch/internal/model"
)

// rules maps each trend to its signal and confidence.
var rules = map[trend]struct {
	Signal     model.Signal
	Confidence int
}{
	trendBullish: {model.SignalBuy, 70},
	trendBearish: {model.SignalSell, 65},
	trendRanging: {model.SignalHold, 55},
}

// LocalProvider derives signals from moving-average alignment and RSI.
// It never returns an error.
type LocalProvider struct{}

func (LocalProvider) Name() string { return model.SourceLocal }

func (LocalProvider) Analyze(_ context.Context, quote *model.Quote, history model.PriceHistory) (*model.AnalysisResult, error) {
	var price float64
	if quote != nil {
		price = quote.Price
	}
	return Evaluate(price, calculator.Indicators(history)), nil
}

// Evaluate computes the local analysis for a price and its indicators.
func Evaluate(price float64, ind model.IndicatorSet) *model.AnalysisResult {
	rule := rules[classifyTrend(price, ind)]
	return &model.AnalysisResult{
		Signal:     rule.Signal,
		Confidence: rule.Confidence,
		Suggestion: suggestionFor(rule.Signal, ind.RSI),
		Source:     model.SourceLocal,
		Indicators: roundIndicators(ind),
	}
}
