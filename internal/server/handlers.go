package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"StockWatch/internal/collector"
	"StockWatch/internal/favorites"
	"StockWatch/internal/model"
)

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	list, err := s.Favorites.List(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("list favorites")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeOK(w, list, "")
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	var entry model.FavoriteEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		s.writeError(w, http.StatusBadRequest, favorites.ErrInvalidEntry.Error())
		return
	}
	list, err := s.Favorites.Add(r.Context(), entry)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeOK(w, list, "添加成功")
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	list, err := s.Favorites.Remove(r.Context(), r.PathValue("code"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeOK(w, list, "删除成功")
}

func (s *Server) handleReorderFavorites(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Codes []string `json:"codes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Codes == nil {
		s.writeError(w, http.StatusBadRequest, "股票代码列表不能为空")
		return
	}
	list, err := s.Favorites.Reorder(r.Context(), req.Codes)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeOK(w, list, "排序成功")
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, favorites.ErrInvalidEntry):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, favorites.ErrDuplicate):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error().Err(err).Msg("favorites store")
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type analyzeRequest struct {
	StockInfo   *model.Quote       `json:"stockInfo"`
	HistoryData model.PriceHistory `json:"historyData"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StockInfo == nil || req.HistoryData == nil {
		s.writeError(w, http.StatusBadRequest, "缺少股票信息或历史数据")
		return
	}
	s.writeOK(w, s.Analyzer.Analyze(r.Context(), req.StockInfo, req.HistoryData), "")
}

func (s *Server) handleKline(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if symbol == "" {
		s.writeError(w, http.StatusBadRequest, "缺少股票代码")
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	history, err := s.Collector.History(r.Context(), symbol, days)
	if err != nil {
		s.log.Error().Err(err).Str("symbol", symbol).Msg("fetch kline")
		s.writeError(w, http.StatusInternalServerError, "获取K线数据失败")
		return
	}
	rows := make([]klineRow, len(history))
	for i, c := range history {
		rows[i] = klineRow{Day: c.Date, Open: c.Open, Close: c.Close, High: c.High, Low: c.Low, Volume: c.Volume}
	}
	s.writeOK(w, rows, "")
}

// klineRow keeps the vendor's "day" key; the web client maps it to a candle date.
type klineRow struct {
	Day    string  `json:"day"`
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume float64 `json:"volume"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		s.writeError(w, http.StatusBadRequest, "缺少股票代码")
		return
	}
	q, err := s.Collector.Quote(r.Context(), code)
	if err != nil {
		if errors.Is(err, collector.ErrNoData) {
			s.writeError(w, http.StatusNotFound, "未找到股票数据")
			return
		}
		s.log.Error().Err(err).Str("code", code).Msg("fetch quote")
		s.writeError(w, http.StatusInternalServerError, "获取行情失败")
		return
	}
	s.writeOK(w, q, "")
}
