package model

// IndicatorSet holds the technical indicators derived from a price history.
type IndicatorSet struct {
	MA5  float64 `json:"ma5"`
	MA10 float64 `json:"ma10"`
	MA20 float64 `json:"ma20"`
	RSI  float64 `json:"rsi"`
}
