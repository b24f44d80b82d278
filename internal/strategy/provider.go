package strategy

import (
	"context"

	"StockWatch/internal/model"
)

// AnalysisProvider produces a signal for a quote and its recent daily history.
type AnalysisProvider interface {
	Analyze(ctx context.Context, quote *model.Quote, history model.PriceHistory) (*model.AnalysisResult, error)
	Name() string
}
