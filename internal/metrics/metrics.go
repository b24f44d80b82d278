package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QuoteDecodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stockwatch_quote_decodes_total", Help: "Vendor quote payloads decoded, by result"},
		[]string{"result"},
	)
	Analyses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stockwatch_analyses_total", Help: "Analysis results produced, by source"},
		[]string{"source"},
	)
	ExternalFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stockwatch_external_analysis_failures_total", Help: "External analysis calls that fell back to local rules"},
		[]string{"reason"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stockwatch_http_requests_total", Help: "HTTP API requests, by route and status"},
		[]string{"route", "status"},
	)
)

func init() {
	prometheus.MustRegister(QuoteDecodes, Analyses, ExternalFailures, HTTPRequests)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
