package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"StockWatch/internal/model"
)

// Fetcher defines the interface for fetching raw market data.
type Fetcher interface {
	// FetchQuote returns the vendor's raw (GBK) quote payload.
	FetchQuote(ctx context.Context, sym model.VendorSymbol) ([]byte, error)
	FetchHistory(ctx context.Context, sym model.VendorSymbol, days int) (model.PriceHistory, error)
	Name() string
}

// HTTPFetcher combines the Tencent quote and Sina kline endpoints.
type HTTPFetcher struct {
	Quotes  *TencentFetcher
	History *SinaFetcher
}

// NewHTTPFetcher creates a fetcher for both vendors sharing one proxy-aware client.
func NewHTTPFetcher(quoteBaseURL, klineBaseURL, proxyURL string, timeout time.Duration) *HTTPFetcher {
	client := newHTTPClient(proxyURL, timeout)
	return &HTTPFetcher{
		Quotes:  &TencentFetcher{BaseURL: quoteBaseURL, Client: client},
		History: &SinaFetcher{BaseURL: klineBaseURL, Client: client},
	}
}

func (f *HTTPFetcher) Name() string { return "tencent+sina" }

func (f *HTTPFetcher) FetchQuote(ctx context.Context, sym model.VendorSymbol) ([]byte, error) {
	return f.Quotes.FetchQuote(ctx, sym)
}

func (f *HTTPFetcher) FetchHistory(ctx context.Context, sym model.VendorSymbol, days int) (model.PriceHistory, error) {
	return f.History.FetchHistory(ctx, sym, days)
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
