package strategy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"StockWatch/internal/calculator"
	"StockWatch/internal/llm"
	"StockWatch/internal/model"
)

type fakeCompleter struct {
	reply  string
	err    error
	panic  bool
	block  bool
	system string
	user   string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	if f.panic {
		panic("boom")
	}
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func sampleQuote() *model.Quote {
	return &model.Quote{Code: "600519", Name: "贵州茅台", Price: 12, PrevClose: 11.8, Volume: 250000, Amount: 3e8}
}

func sampleHistory() model.PriceHistory {
	history := make(model.PriceHistory, 0, 25)
	for i := 0; i < 25; i++ {
		history = append(history, model.Candle{Date: time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), Close: 8 + float64(i)*0.1, Volume: 10000})
	}
	return history
}

func newTestAnalyzer(c ChatCompleter) *Analyzer {
	return NewAnalyzer(NewExternalProvider(c, "", 200*time.Millisecond), zerolog.Nop())
}

func TestAnalyzer_LocalOnly(t *testing.T) {
	a := NewAnalyzer(nil, zerolog.Nop())
	res := a.Analyze(context.Background(), sampleQuote(), sampleHistory())
	if res.Source != model.SourceLocal {
		t.Errorf("expected local source, got %s", res.Source)
	}
	if res.Signal != model.SignalBuy {
		t.Errorf("expected buy for price above a rising stack, got %s", res.Signal)
	}
}

func TestAnalyzer_ExternalReply(t *testing.T) {
	fc := &fakeCompleter{reply: "分析如下：\n```json\n{\"signal\":\"卖出\",\"confidence\":\"82\",\"suggestion\":\"放量滞涨\",\"indicators\":{\"ma5\":\"10.1\",\"rsi\":71.234}}\n```"}
	res := newTestAnalyzer(fc).Analyze(context.Background(), sampleQuote(), sampleHistory())

	if res.Source != model.SourceDeepSeek {
		t.Fatalf("expected external source, got %s", res.Source)
	}
	if res.Signal != model.SignalSell || res.Confidence != 82 || res.Suggestion != "放量滞涨" {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Indicators.MA5 != 10.1 || res.Indicators.RSI != 71.23 {
		t.Errorf("expected model indicators, got %+v", res.Indicators)
	}
	// ma10 and ma20 were missing and come from the local formulas.
	if res.Indicators.MA10 == 0 || res.Indicators.MA20 == 0 {
		t.Errorf("expected backfilled averages, got %+v", res.Indicators)
	}
	if !strings.Contains(fc.user, "贵州茅台") || !strings.Contains(fc.user, "2024-01-25") {
		t.Errorf("prompt should embed the quote and recent candles:\n%s", fc.user)
	}
	if strings.Contains(fc.user, "2024-01-15") {
		t.Errorf("prompt should only embed the last %d candles", promptCandles)
	}
}

func TestAnalyzer_NormalizesReply(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		signal     model.Signal
		confidence int
		suggestion string
	}{
		{"empty object", `{}`, model.SignalHold, 50, defaultSuggestion},
		{"clamp high", `{"signal":"BUY","confidence":150}`, model.SignalBuy, 100, defaultSuggestion},
		{"clamp low", `{"signal":"sell","confidence":-5}`, model.SignalSell, 0, defaultSuggestion},
		{"non-numeric confidence", `{"signal":"买入","confidence":"high"}`, model.SignalBuy, 50, defaultSuggestion},
		{"unknown signal", `{"signal":"strong buy","confidence":60,"suggestion":"ok"}`, model.SignalHold, 60, "ok"},
		{"zero confidence kept", `{"confidence":0}`, model.SignalHold, 0, defaultSuggestion},
		{"overflowing indicator", `{"signal":"买入","confidence":80,"indicators":{"ma5":"1e400"}}`, model.SignalBuy, 80, defaultSuggestion},
	}
	localMA5 := round2(calculator.MovingAverage(sampleHistory(), 5))
	for _, tt := range tests {
		res := newTestAnalyzer(&fakeCompleter{reply: tt.reply}).Analyze(context.Background(), sampleQuote(), sampleHistory())
		if res.Source != model.SourceDeepSeek {
			t.Errorf("%s: expected external source, got %s", tt.name, res.Source)
			continue
		}
		if res.Signal != tt.signal || res.Confidence != tt.confidence || res.Suggestion != tt.suggestion {
			t.Errorf("%s: got %s/%d/%q", tt.name, res.Signal, res.Confidence, res.Suggestion)
		}
		// Missing or unusable indicator values come from the local formulas.
		if res.Indicators.MA5 != localMA5 {
			t.Errorf("%s: expected backfilled MA5 %v, got %v", tt.name, localMA5, res.Indicators.MA5)
		}
	}
}

func TestAnalyzer_FallsBack(t *testing.T) {
	tests := []struct {
		name string
		fc   *fakeCompleter
	}{
		{"request error", &fakeCompleter{err: errors.New("connection refused")}},
		{"no json", &fakeCompleter{reply: "无法分析"}},
		{"broken json", &fakeCompleter{reply: `{"signal": "买入",`}},
		{"reversed braces", &fakeCompleter{reply: `} nope {`}},
		{"panic", &fakeCompleter{panic: true}},
		{"timeout", &fakeCompleter{block: true}},
	}
	for _, tt := range tests {
		start := time.Now()
		res := newTestAnalyzer(tt.fc).Analyze(context.Background(), sampleQuote(), sampleHistory())
		if res == nil {
			t.Fatalf("%s: expected a result", tt.name)
		}
		if res.Source != model.SourceLocal {
			t.Errorf("%s: expected local fallback, got %s", tt.name, res.Source)
		}
		if time.Since(start) > 2*time.Second {
			t.Errorf("%s: fallback took too long", tt.name)
		}
	}
}

func TestAnalyzer_HTTPFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := llm.NewClient(srv.URL, "key", "", "", time.Second)
	a := NewAnalyzer(NewExternalProvider(client, "", time.Second), zerolog.Nop())
	res := a.Analyze(context.Background(), sampleQuote(), sampleHistory())
	if res.Source != model.SourceLocal {
		t.Fatalf("expected local fallback, got %s", res.Source)
	}
}

func TestExtractObject(t *testing.T) {
	obj, err := extractObject("prefix {\"a\":{\"b\":1}} suffix")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj.Get("a.b").Int() != 1 {
		t.Errorf("expected nested value, got %s", obj.Raw)
	}
	if _, err := extractObject("no braces"); !errors.Is(err, errNoJSON) {
		t.Errorf("expected errNoJSON, got %v", err)
	}
}
