package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"StockWatch/internal/model"
)

// DefaultQuoteBaseURL is the Tencent realtime quote endpoint; the vendor symbol is appended.
const DefaultQuoteBaseURL = "https://web.sqt.gtimg.cn/q="

// TencentFetcher retrieves raw quote payloads from the Tencent quote service.
type TencentFetcher struct {
	BaseURL string
	Client  *http.Client
}

func (f *TencentFetcher) Name() string { return "tencent" }

func (f *TencentFetcher) FetchQuote(ctx context.Context, sym model.VendorSymbol) ([]byte, error) {
	base := f.BaseURL
	if base == "" {
		base = DefaultQuoteBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+sym.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://gu.qq.com/")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s fetch %s: %w", f.Name(), sym, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w", f.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d for %s", f.Name(), resp.StatusCode, sym)
	}
	return body, nil
}
