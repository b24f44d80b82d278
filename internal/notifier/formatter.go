package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockWatch/internal/model"
)

// DigestItem is one watchlist row. Err is set when the quote could not be fetched.
type DigestItem struct {
	Entry    model.FavoriteEntry
	Quote    *model.Quote
	Analysis *model.AnalysisResult
	High     float64
	Low      float64
	Position float64 // 0..1 within [Low, High]
	Err      error
}

var signalIcons = map[model.Signal]string{
	model.SignalBuy:  "🟢",
	model.SignalSell: "🔴",
	model.SignalHold: "⚪",
}

// FormatDigest formats the watchlist digest into a Telegram message.
func FormatDigest(items []DigestItem, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>自选股日报</b> | %s\n\n", now.Format("2006-01-02")))
	if len(items) == 0 {
		b.WriteString("自选列表为空")
		return b.String()
	}

	for _, it := range items {
		if it.Err != nil || it.Quote == nil {
			b.WriteString(fmt.Sprintf("❌ %s %s: 行情获取失败\n\n", html.EscapeString(it.Entry.Name), it.Entry.Code))
			continue
		}
		b.WriteString(formatQuoteLine(it.Quote))
		if it.High > 0 {
			b.WriteString(fmt.Sprintf("   区间: %.2f ~ %.2f | 位置 %.0f%%\n", it.Low, it.High, it.Position*100))
		}
		if it.Analysis != nil {
			b.WriteString("   " + formatSignalLine(it.Analysis))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatQuote formats a single quote with its valuation fields.
func FormatQuote(q *model.Quote) string {
	var b strings.Builder
	b.WriteString(formatQuoteLine(q))
	b.WriteString(fmt.Sprintf("今开: %.2f | 昨收: %.2f\n", q.Open, q.PrevClose))
	b.WriteString(fmt.Sprintf("最高: %.2f | 最低: %.2f\n", q.High, q.Low))
	b.WriteString(fmt.Sprintf("成交量: %.0f万手 | 成交额: %.2f亿\n", q.Volume/10000, q.Amount/1e8))
	b.WriteString(fmt.Sprintf("市盈率: %.2f | 市净率: %.2f\n", q.PE, q.PB))
	return b.String()
}

// FormatAnalysis formats an analysis result with its indicators.
func FormatAnalysis(q *model.Quote, res *model.AnalysisResult) string {
	var b strings.Builder
	b.WriteString(formatQuoteLine(q))
	b.WriteString(formatSignalLine(res))
	ind := res.Indicators
	b.WriteString(fmt.Sprintf("MA5: %.2f | MA10: %.2f | MA20: %.2f\n", ind.MA5, ind.MA10, ind.MA20))
	b.WriteString(fmt.Sprintf("RSI: %.2f\n", ind.RSI))
	b.WriteString(html.EscapeString(res.Suggestion))
	b.WriteString(fmt.Sprintf("\n<i>来源: %s</i>", html.EscapeString(res.Source)))
	return b.String()
}

// FormatWatchlist lists the favorites in order.
func FormatWatchlist(list []model.FavoriteEntry) string {
	if len(list) == 0 {
		return "自选列表为空"
	}
	var b strings.Builder
	b.WriteString("⭐ <b>自选列表</b>\n\n")
	for i, f := range list {
		b.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, html.EscapeString(f.Name), f.Code))
	}
	return b.String()
}

func formatQuoteLine(q *model.Quote) string {
	return fmt.Sprintf("<b>%s</b> %s  %.2f (%+.2f%%)\n", html.EscapeString(q.Name), q.Code, q.Price, q.ChangePercent)
}

func formatSignalLine(res *model.AnalysisResult) string {
	return fmt.Sprintf("%s %s 置信度 %d%%\n", signalIcons[res.Signal], res.Signal, res.Confidence)
}
