package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"StockWatch/internal/metrics"
	"StockWatch/internal/model"
)

// Analyzer runs the external provider when configured and falls back to
// local rules on any failure. Analyze always returns a result.
type Analyzer struct {
	External AnalysisProvider
	Local    LocalProvider
	log      zerolog.Logger
}

// NewAnalyzer creates an Analyzer. A nil external provider selects local-only analysis.
func NewAnalyzer(external AnalysisProvider, log zerolog.Logger) *Analyzer {
	return &Analyzer{External: external, log: log}
}

// Analyze produces a signal for quote and history.
func (a *Analyzer) Analyze(ctx context.Context, quote *model.Quote, history model.PriceHistory) *model.AnalysisResult {
	if a.External != nil {
		res, err := a.tryExternal(ctx, quote, history)
		if err == nil {
			metrics.Analyses.WithLabelValues(res.Source).Inc()
			return res
		}
		reason := "unknown"
		var ee *ExternalError
		if errors.As(err, &ee) {
			reason = ee.Reason
		}
		metrics.ExternalFailures.WithLabelValues(reason).Inc()
		a.log.Warn().Err(err).Str("provider", a.External.Name()).Msg("external analysis failed, using local rules")
	}

	res, _ := a.Local.Analyze(ctx, quote, history)
	metrics.Analyses.WithLabelValues(res.Source).Inc()
	return res
}

func (a *Analyzer) tryExternal(ctx context.Context, quote *model.Quote, history model.PriceHistory) (res *model.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, &ExternalError{Reason: "panic", Err: fmt.Errorf("%v", r)}
		}
	}()
	res, err = a.External.Analyze(ctx, quote, history)
	if err == nil && res == nil {
		err = &ExternalError{Reason: "empty", Err: errors.New("provider returned no result")}
	}
	return res, err
}
