package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"StockWatch/internal/collector"
	"StockWatch/internal/favorites"
	"StockWatch/internal/metrics"
	"StockWatch/internal/strategy"
)

// envelope is the JSON shape of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Server serves the favorites, analysis and market data API plus the web UI.
type Server struct {
	Collector *collector.Collector
	Analyzer  *strategy.Analyzer
	Favorites favorites.Store
	StaticDir string
	log       zerolog.Logger
}

// New creates a Server.
func New(col *collector.Collector, an *strategy.Analyzer, store favorites.Store, staticDir string, log zerolog.Logger) *Server {
	return &Server{
		Collector: col,
		Analyzer:  an,
		Favorites: store,
		StaticDir: staticDir,
		log:       log,
	}
}

// RegisterRoutes registers all HTTP routes on the provided mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/favorites", s.handleListFavorites)
	mux.HandleFunc("POST /api/favorites", s.handleAddFavorite)
	mux.HandleFunc("DELETE /api/favorites/{code}", s.handleRemoveFavorite)
	mux.HandleFunc("PUT /api/favorites/reorder", s.handleReorderFavorites)
	mux.HandleFunc("POST /api/analysis/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/stock/kline", s.handleKline)
	mux.HandleFunc("GET /api/stock/quote", s.handleQuote)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /", s.handleStatic)
}

// Handler returns the routed mux wrapped with CORS and request metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(s.instrument(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts requests by matched route pattern and status.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Int("status", rec.status).Msg("request")
	})
}

// handleStatic serves the built web UI, falling back to index.html for
// client-side routes.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	name := filepath.Join(s.StaticDir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		http.ServeFile(w, r, name)
		return
	}
	index := filepath.Join(s.StaticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, index)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) writeOK(w http.ResponseWriter, data any, message string) {
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Message: message})
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, envelope{Success: false, Message: message})
}
