package model

import "strings"

// Signal is the recommended action.
type Signal string

const (
	SignalBuy  Signal = "买入"
	SignalSell Signal = "卖出"
	SignalHold Signal = "持有"
)

// ParseSignal maps a free-form signal label to a Signal. Unknown labels map to hold.
func ParseSignal(s string) Signal {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(SignalBuy), "BUY":
		return SignalBuy
	case string(SignalSell), "SELL":
		return SignalSell
	default:
		return SignalHold
	}
}

// Source tags for AnalysisResult.Source.
const (
	SourceLocal    = "本地算法"
	SourceDeepSeek = "DeepSeek AI"
)

// AnalysisResult is the output of the signal analyzer.
type AnalysisResult struct {
	Signal     Signal       `json:"signal"`
	Confidence int          `json:"confidence"`
	Suggestion string       `json:"suggestion"`
	Source     string       `json:"model"`
	Indicators IndicatorSet `json:"indicators"`
}
