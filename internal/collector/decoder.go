package collector

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"

	"StockWatch/internal/metrics"
	"StockWatch/internal/model"
)

// MinQuoteFields is the narrowest record the decoder accepts.
const MinQuoteFields = 35

var (
	ErrNoData       = errors.New("no quote data")
	ErrMalformed    = errors.New("quote assignment not found")
	ErrTooFewFields = errors.New("too few quote fields")
)

// DecodeError reports why a vendor payload could not be turned into a Quote.
type DecodeError struct {
	Ticker string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode quote %s: %v", e.Ticker, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// quoteLayout is the positional meaning of the "~"-separated vendor record.
var quoteLayout = struct {
	Name, Price, PrevClose, Open, Volume         int
	Change, ChangePercent, High, Low, Amount, PE int
	CirculationValue, TotalMarketValue, PB       int
}{
	Name:             1,
	Price:            3,
	PrevClose:        4,
	Open:             5,
	Volume:           6,
	Change:           31,
	ChangePercent:    32,
	High:             33,
	Low:              34,
	Amount:           37,
	PE:               39,
	CirculationValue: 44,
	TotalMarketValue: 45,
	PB:               46,
}

var (
	noDataMarker  = []byte("pv_none_match")
	assignPattern = regexp.MustCompile(`v_(?:sh|sz|hk)\d+="([^"]+)"`)
)

// DecodeQuote converts a GBK-encoded vendor payload into a Quote whose Code is ticker.
func DecodeQuote(raw []byte, ticker string) (*model.Quote, error) {
	q, err := decodeQuote(raw, ticker)
	if err != nil {
		metrics.QuoteDecodes.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.QuoteDecodes.WithLabelValues("ok").Inc()
	return q, nil
}

func decodeQuote(raw []byte, ticker string) (*model.Quote, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Contains(raw, noDataMarker) {
		return nil, &DecodeError{Ticker: ticker, Err: ErrNoData}
	}

	text, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, &DecodeError{Ticker: ticker, Err: fmt.Errorf("gbk: %w", err)}
	}

	m := assignPattern.FindSubmatch(text)
	if m == nil {
		return nil, &DecodeError{Ticker: ticker, Err: ErrMalformed}
	}

	fields := strings.Split(string(m[1]), "~")
	if len(fields) < MinQuoteFields {
		return nil, &DecodeError{Ticker: ticker, Err: fmt.Errorf("%w: got %d, need %d", ErrTooFewFields, len(fields), MinQuoteFields)}
	}

	l := quoteLayout
	q := &model.Quote{
		Code:             ticker,
		Name:             fieldString(fields, l.Name),
		Price:            fieldFloat(fields, l.Price),
		Change:           fieldFloat(fields, l.Change),
		ChangePercent:    fieldFloat(fields, l.ChangePercent),
		Open:             fieldFloat(fields, l.Open),
		PrevClose:        fieldFloat(fields, l.PrevClose),
		High:             fieldFloat(fields, l.High),
		Low:              fieldFloat(fields, l.Low),
		Volume:           math.Trunc(fieldFloat(fields, l.Volume)),
		Amount:           fieldFloat(fields, l.Amount),
		PE:               fieldFloat(fields, l.PE),
		PB:               fieldFloat(fields, l.PB),
		TotalMarketValue: fieldFloat(fields, l.TotalMarketValue),
		CirculationValue: fieldFloat(fields, l.CirculationValue),
	}
	if q.Name == "" {
		q.Name = model.UnknownName
	}
	return q, nil
}

func fieldString(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

// fieldFloat returns 0 for missing or non-numeric fields.
func fieldFloat(fields []string, i int) float64 {
	v, err := strconv.ParseFloat(fieldString(fields, i), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
