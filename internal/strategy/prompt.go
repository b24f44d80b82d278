package strategy

import (
	"fmt"
	"strings"

	"StockWatch/internal/model"
)

// promptCandles is how many recent candles are embedded in the prompt.
const promptCandles = 10

const systemPrompt = `你是股票分析师，根据数据给出简练客观的分析结论。

要求：
1. 综合信号：只能是"买入"、"卖出"或"持有"
2. 置信度：0-100的整数
3. 分析建议：50字以内，简明扼要说明理由
4. 技术指标：MA5、MA10、MA20、RSI的数值

返回JSON格式：
{
  "signal": "买入/卖出/持有",
  "confidence": 75,
  "suggestion": "简练分析...",
  "indicators": {"ma5": "数值", "ma10": "数值", "ma20": "数值", "rsi": "数值"}
}`

func buildPrompt(q *model.Quote, history model.PriceHistory) string {
	var b strings.Builder
	b.WriteString("请分析以下股票数据：\n\n股票信息：\n")
	b.WriteString(fmt.Sprintf("- 名称：%s\n", q.Name))
	b.WriteString(fmt.Sprintf("- 代码：%s\n", q.Code))
	b.WriteString(fmt.Sprintf("- 当前价格：%g元\n", q.Price))
	b.WriteString(fmt.Sprintf("- 涨跌幅：%g%%\n", q.ChangePercent))
	b.WriteString(fmt.Sprintf("- 今开：%g元\n", q.Open))
	b.WriteString(fmt.Sprintf("- 昨收：%g元\n", q.PrevClose))
	b.WriteString(fmt.Sprintf("- 最高：%g元\n", q.High))
	b.WriteString(fmt.Sprintf("- 最低：%g元\n", q.Low))
	b.WriteString(fmt.Sprintf("- 成交量：%.0f万手\n", q.Volume/10000))
	b.WriteString(fmt.Sprintf("- 成交额：%.2f亿\n", q.Amount/1e8))
	b.WriteString(fmt.Sprintf("- 市盈率：%g\n", q.PE))
	b.WriteString(fmt.Sprintf("- 市净率：%g\n", q.PB))

	b.WriteString(fmt.Sprintf("\n近%d日价格走势：\n", promptCandles))
	for _, c := range history.Last(promptCandles) {
		b.WriteString(fmt.Sprintf("%s: 收盘%g元, 成交量%.0f万手\n", c.Date, c.Close, c.Volume/10000))
	}
	b.WriteString("\n请给出专业的分析结论。")
	return b.String()
}
