package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"StockWatch/internal/model"
)

func newTestNotifier(url string) *TelegramNotifier {
	tn := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	tn.APIBase = url
	return tn
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	if err := newTestNotifier(srv.URL).Send(context.Background(), "<b>hi</b>"); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if got["chat_id"] != "42" || got["parse_mode"] != "HTML" || got["text"] != "<b>hi</b>" {
		t.Fatalf("unexpected payload: %v", got)
	}
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).Send(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestSendWithRetry_RecoversAfterFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	if err := newTestNotifier(srv.URL).SendWithRetry(context.Background(), "x", 2); err != nil {
		t.Fatalf("SendWithRetry returned error: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestSendWithRetry_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := newTestNotifier(srv.URL).SendWithRetry(ctx, "x", 5)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestStartPolling(t *testing.T) {
	var polls int32
	replies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/getUpdates":
			if atomic.AddInt32(&polls, 1) == 1 {
				w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /watchlist "}},{"update_id":8}]}`))
				return
			}
			if r.URL.Query().Get("offset") != "9" {
				t.Errorf("expected offset 9, got %s", r.URL.Query().Get("offset"))
			}
			<-r.Context().Done()
		case "/botTOKEN/sendMessage":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			replies <- body["text"]
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		newTestNotifier(srv.URL).StartPolling(ctx, func(_ context.Context, cmd string) string {
			return "reply:" + cmd
		})
		close(done)
	}()

	select {
	case got := <-replies:
		if got != "reply:/watchlist" {
			t.Errorf("unexpected reply %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reply")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop after cancel")
	}
}

func TestFormatDigest(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	items := []DigestItem{
		{
			Entry:    model.FavoriteEntry{Code: "600519", Name: "贵州茅台"},
			Quote:    &model.Quote{Code: "600519", Name: "贵州茅台", Price: 1700, ChangePercent: 1.25},
			Analysis: &model.AnalysisResult{Signal: model.SignalBuy, Confidence: 70},
			High:     1750,
			Low:      1600,
			Position: 0.6667,
		},
		{Entry: model.FavoriteEntry{Code: "000002", Name: "万科A"}, Err: errors.New("timeout")},
	}
	got := FormatDigest(items, now)
	for _, want := range []string{"2024-03-15", "1700.00 (+1.25%)", "1600.00 ~ 1750.00 | 位置 67%", "🟢 买入 置信度 70%", "万科A 000002: 行情获取失败"} {
		if !strings.Contains(got, want) {
			t.Errorf("digest missing %q:\n%s", want, got)
		}
	}
	if !strings.Contains(FormatDigest(nil, now), "自选列表为空") {
		t.Error("expected empty watchlist notice")
	}
}

func TestFormatAnalysis_EscapesHTML(t *testing.T) {
	q := &model.Quote{Code: "600519", Name: "A<B>"}
	res := &model.AnalysisResult{Signal: model.SignalHold, Suggestion: "price < MA5 & RSI > 70", Source: "本地算法"}
	got := FormatAnalysis(q, res)
	if strings.Contains(got, "A<B>") || !strings.Contains(got, "price &lt; MA5 &amp; RSI &gt; 70") {
		t.Fatalf("expected escaped output, got:\n%s", got)
	}
}

func TestFormatWatchlist(t *testing.T) {
	got := FormatWatchlist([]model.FavoriteEntry{{Code: "600000", Name: "浦发银行"}, {Code: "00700", Name: "腾讯控股"}})
	if !strings.Contains(got, "1. 浦发银行 600000") || !strings.Contains(got, "2. 腾讯控股 00700") {
		t.Fatalf("unexpected watchlist:\n%s", got)
	}
	if FormatWatchlist(nil) != "自选列表为空" {
		t.Fatal("expected empty notice")
	}
}
