package strategy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"StockWatch/internal/calculator"
	"StockWatch/internal/model"
	"StockWatch/internal/trace"
)

const (
	DefaultExternalTimeout = 30 * time.Second
	defaultConfidence      = 50
	defaultSuggestion      = "暂无分析建议"
)

// ChatCompleter sends a system instruction and a user prompt to a language model.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ExternalError describes why the external provider produced no result.
// Reason is a short label suitable for metrics.
type ExternalError struct {
	Reason string
	Err    error
}

func (e *ExternalError) Error() string { return fmt.Sprintf("external analysis %s: %v", e.Reason, e.Err) }
func (e *ExternalError) Unwrap() error { return e.Err }

var (
	errNoJSON     = errors.New("no json object in reply")
	errInvalidObj = errors.New("reply json is not an object")
)

// ExternalProvider delegates analysis to a chat model and normalizes its reply.
type ExternalProvider struct {
	Client  ChatCompleter
	Source  string
	Timeout time.Duration
}

// NewExternalProvider creates a provider tagged with source (model.SourceDeepSeek when empty).
func NewExternalProvider(client ChatCompleter, source string, timeout time.Duration) *ExternalProvider {
	if source == "" {
		source = model.SourceDeepSeek
	}
	if timeout <= 0 {
		timeout = DefaultExternalTimeout
	}
	return &ExternalProvider{Client: client, Source: source, Timeout: timeout}
}

func (p *ExternalProvider) Name() string { return p.Source }

func (p *ExternalProvider) Analyze(ctx context.Context, quote *model.Quote, history model.PriceHistory) (*model.AnalysisResult, error) {
	if quote == nil {
		return nil, &ExternalError{Reason: "input", Err: errors.New("nil quote")}
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	ctx, span := trace.StartSpan(ctx, "analysis.external")
	defer span.End()

	reply, err := p.Client.Complete(ctx, systemPrompt, buildPrompt(quote, history))
	if err != nil {
		span.RecordError(err)
		return nil, &ExternalError{Reason: "request", Err: err}
	}

	obj, err := extractObject(reply)
	if err != nil {
		span.RecordError(err)
		return nil, &ExternalError{Reason: "parse", Err: err}
	}
	return normalize(obj, history, p.Source), nil
}

// extractObject takes the span from the first "{" to the last "}" and parses it.
func extractObject(reply string) (gjson.Result, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return gjson.Result{}, errNoJSON
	}
	candidate := reply[start : end+1]
	if !gjson.Valid(candidate) {
		return gjson.Result{}, fmt.Errorf("invalid json: %.80q", candidate)
	}
	obj := gjson.Parse(candidate)
	if !obj.IsObject() {
		return gjson.Result{}, errInvalidObj
	}
	return obj, nil
}

// normalize coerces a model reply into a valid result. Missing indicator
// values are filled from the local formulas.
func normalize(obj gjson.Result, history model.PriceHistory, source string) *model.AnalysisResult {
	res := &model.AnalysisResult{
		Signal:     model.SignalHold,
		Confidence: defaultConfidence,
		Suggestion: defaultSuggestion,
		Source:     source,
	}

	if s := obj.Get("signal"); s.Type == gjson.String && strings.TrimSpace(s.Str) != "" {
		res.Signal = model.ParseSignal(s.Str)
	}
	if c, ok := parseNumber(obj.Get("confidence")); ok {
		res.Confidence = clampConfidence(c)
	}
	if s := strings.TrimSpace(obj.Get("suggestion").String()); s != "" {
		res.Suggestion = s
	}

	local := calculator.Indicators(history)
	res.Indicators = roundIndicators(model.IndicatorSet{
		MA5:  numberOr(obj.Get("indicators.ma5"), local.MA5),
		MA10: numberOr(obj.Get("indicators.ma10"), local.MA10),
		MA20: numberOr(obj.Get("indicators.ma20"), local.MA20),
		RSI:  numberOr(obj.Get("indicators.rsi"), local.RSI),
	})
	return res
}

// parseNumber accepts JSON numbers and numeric strings.
func parseNumber(r gjson.Result) (decimal.Decimal, bool) {
	var raw string
	switch r.Type {
	case gjson.Number:
		raw = r.Raw
	case gjson.String:
		raw = strings.TrimSpace(r.Str)
	default:
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func numberOr(r gjson.Result, fallback float64) float64 {
	if d, ok := parseNumber(r); ok {
		if v := d.InexactFloat64(); !math.IsInf(v, 0) && !math.IsNaN(v) {
			return v
		}
	}
	return fallback
}

func clampConfidence(d decimal.Decimal) int {
	switch {
	case d.LessThan(decimal.Zero):
		return 0
	case d.GreaterThan(decimal.NewFromInt(100)):
		return 100
	default:
		return int(d.Round(0).IntPart())
	}
}
