package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"

	"StockWatch/internal/model"
)

// DefaultKlineBaseURL is the Sina daily kline endpoint.
const DefaultKlineBaseURL = "https://quotes.sina.cn/cn/api/json_v2.php/CN_MarketDataService.getKLineData"

// SinaFetcher retrieves daily candles from the Sina market data service.
type SinaFetcher struct {
	BaseURL string
	Client  *http.Client
}

func (f *SinaFetcher) Name() string { return "sina" }

func (f *SinaFetcher) FetchHistory(ctx context.Context, sym model.VendorSymbol, days int) (model.PriceHistory, error) {
	base := f.BaseURL
	if base == "" {
		base = DefaultKlineBaseURL
	}
	q := url.Values{}
	q.Set("symbol", sym.String())
	q.Set("scale", "240")
	q.Set("datalen", strconv.Itoa(days))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

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
		return nil, fmt.Errorf("%s: status %d, body: %s", f.Name(), resp.StatusCode, string(body))
	}
	return parseKlines(body)
}

// parseKlines reads the kline array. Sina sends every number as a string and
// answers "null" for unknown symbols.
func parseKlines(body []byte) (model.PriceHistory, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("sina: invalid json")
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return model.PriceHistory{}, nil
	}

	items := root.Array()
	history := make(model.PriceHistory, 0, len(items))
	for _, it := range items {
		day := it.Get("day").String()
		if day == "" {
			continue
		}
		history = append(history, model.Candle{
			Date:   day,
			Open:   it.Get("open").Float(),
			Close:  it.Get("close").Float(),
			High:   it.Get("high").Float(),
			Low:    it.Get("low").Float(),
			Volume: it.Get("volume").Float(),
		})
	}
	sort.SliceStable(history, func(i, j int) bool { return history[i].Date < history[j].Date })
	return history, nil
}
