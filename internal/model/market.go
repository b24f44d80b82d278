package model

// UnknownName is reported when the vendor payload carries no security name.
const UnknownName = "未知"

// Exchange prefixes understood by the quote vendor.
const (
	ExchangeHK = "hk"
	ExchangeSH = "sh"
	ExchangeSZ = "sz"
)

// VendorSymbol is an exchange-qualified code such as "sh600519".
type VendorSymbol struct {
	Prefix string
	Code   string
}

func (s VendorSymbol) String() string { return s.Prefix + s.Code }

// Quote is a point-in-time snapshot decoded from the vendor payload.
// JSON names follow the dashboard front end.
type Quote struct {
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	Change           float64 `json:"change"`
	ChangePercent    float64 `json:"changePercent"`
	Open             float64 `json:"open"`
	PrevClose        float64 `json:"close"`
	High             float64 `json:"high"`
	Low              float64 `json:"low"`
	Volume           float64 `json:"volume"`
	Amount           float64 `json:"amount"`
	PE               float64 `json:"pe"`
	PB               float64 `json:"pb"`
	TotalMarketValue float64 `json:"totalValue"`
	CirculationValue float64 `json:"circulationValue"`
}

// Candle represents a single daily bar.
type Candle struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume float64 `json:"volume"`
}

// PriceHistory is a list of candles in ascending date order.
type PriceHistory []Candle

// Closes returns the close prices in order.
func (h PriceHistory) Closes() []float64 {
	closes := make([]float64, len(h))
	for i, c := range h {
		closes[i] = c.Close
	}
	return closes
}

// Last returns the n most recent candles.
func (h PriceHistory) Last(n int) PriceHistory {
	if n <= 0 {
		return nil
	}
	if len(h) <= n {
		return h
	}
	return h[len(h)-n:]
}
