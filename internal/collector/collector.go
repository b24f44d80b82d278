package collector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/simplifiedchinese"

	"StockWatch/internal/model"
)

const (
	DefaultHistoryDays = 30
	MaxHistoryDays     = 1000
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price       float64
	StockName   string
	HistoryData model.PriceHistory
	Err         error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuote(_ context.Context, sym model.VendorSymbol) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	name := m.StockName
	if name == "" {
		name = "模拟股票"
	}
	return EncodeQuotePayload(sym, name, m.Price, m.Price*0.99)
}

func (m *MockFetcher) FetchHistory(_ context.Context, _ model.VendorSymbol, days int) (model.PriceHistory, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.HistoryData != nil {
		return m.HistoryData.Last(days), nil
	}
	return generateMockHistory(m.Price, days), nil
}

// EncodeQuotePayload renders a GBK vendor payload in the layout DecodeQuote reads.
func EncodeQuotePayload(sym model.VendorSymbol, name string, price, prevClose float64) ([]byte, error) {
	fields := make([]string, 50)
	l := quoteLayout
	fields[0] = "1"
	fields[2] = sym.Code
	fields[l.Name] = name
	fields[l.Price] = formatNum(price)
	fields[l.PrevClose] = formatNum(prevClose)
	fields[l.Open] = formatNum(prevClose)
	fields[l.Volume] = "120000"
	fields[l.Change] = formatNum(price - prevClose)
	if prevClose != 0 {
		fields[l.ChangePercent] = formatNum((price - prevClose) / prevClose * 100)
	}
	fields[l.High] = formatNum(price * 1.01)
	fields[l.Low] = formatNum(prevClose * 0.99)
	fields[l.Amount] = "15000"
	fields[l.PE] = "12.5"
	fields[l.CirculationValue] = "1000"
	fields[l.TotalMarketValue] = "1200"
	fields[l.PB] = "1.3"

	text := fmt.Sprintf("v_%s=\"%s\";\n", sym, strings.Join(fields, "~"))
	return simplifiedchinese.GBK.NewEncoder().Bytes([]byte(text))
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func generateMockHistory(basePrice float64, count int) model.PriceHistory {
	history := make(model.PriceHistory, count)
	start := time.Now().AddDate(0, 0, -count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		history[i] = model.Candle{
			Date:   start.AddDate(0, 0, i).Format("2006-01-02"),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return history
}

// Collector resolves tickers and fetches decoded market data.
type Collector struct {
	Fetcher Fetcher
	log     zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, log zerolog.Logger) *Collector {
	return &Collector{Fetcher: fetcher, log: log}
}

// Quote fetches and decodes the current quote for ticker.
func (c *Collector) Quote(ctx context.Context, ticker string) (*model.Quote, error) {
	sym := ResolveSymbol(ticker)
	raw, err := c.Fetcher.FetchQuote(ctx, sym)
	if err != nil {
		return nil, fmt.Errorf("fetch quote: %w", err)
	}
	return DecodeQuote(raw, ticker)
}

// History fetches up to days daily candles for symbol, which may be a bare
// ticker or an exchange-qualified code.
func (c *Collector) History(ctx context.Context, symbol string, days int) (model.PriceHistory, error) {
	days = ClampDays(days)
	history, err := c.Fetcher.FetchHistory(ctx, ParseSymbol(symbol), days)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return history, nil
}

// Snapshot returns the quote plus recent history. A history failure is
// logged and yields an empty history so the caller can still analyze.
func (c *Collector) Snapshot(ctx context.Context, ticker string, days int) (*model.Quote, model.PriceHistory, error) {
	q, err := c.Quote(ctx, ticker)
	if err != nil {
		return nil, nil, err
	}
	history, err := c.History(ctx, ticker, days)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("history unavailable, analyzing quote only")
		history = model.PriceHistory{}
	}
	return q, history, nil
}

// ClampDays applies the default and upper bound to a requested day count.
func ClampDays(days int) int {
	if days <= 0 {
		return DefaultHistoryDays
	}
	if days > MaxHistoryDays {
		return MaxHistoryDays
	}
	return days
}
