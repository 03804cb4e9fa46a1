package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"finadvisor/internal/domain"
	"finadvisor/internal/modules/portfolio"
)

// handleStockInfo returns the current quote for a symbol.
// GET /api/stock/{symbol}
func (s *Server) handleStockInfo(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	quote, err := s.market.GetQuote(r.Context(), symbol)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, quote)
}

// handleStockHistory returns daily bars for a symbol.
// GET /api/stock/{symbol}/history?period=3mo
func (s *Server) handleStockHistory(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "3mo"
	}

	bars, err := s.market.GetHistory(r.Context(), symbol, period)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"period": period,
		"bars":   bars,
	})
}

// handleMarketSummary returns day-over-day change of the tracked indices.
// GET /api/market
func (s *Server) handleMarketSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.market.GetMarketSummary(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

// handleAnalysis returns the advisor recommendation with its embedded
// technical snapshot.
// GET /api/analysis/{symbol}
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	rec, err := s.advisor.Recommend(r.Context(), symbol)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// handleRecommendations returns batch recommendations for the union of
// watchlist and holdings, or an explicit ?symbols=A,B,C list. Failed
// symbols appear as {symbol, error} entries.
// GET /api/recommendations
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var symbols []string
	if raw := r.URL.Query().Get("symbols"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				symbols = append(symbols, strings.ToUpper(trimmed))
			}
		}
	} else {
		var err error
		symbols, err = s.reporter.AdviceSymbols(s.defaultSymbols)
		if err != nil {
			s.writeError(w, err)
			return
		}
	}

	entries := s.advisor.RecommendBatch(r.Context(), symbols)
	s.writeJSON(w, http.StatusOK, entries)
}

// handlePortfolioRisk returns the weighted portfolio risk report.
// GET /api/risk
func (s *Server) handlePortfolioRisk(w http.ResponseWriter, r *http.Request) {
	holdings, err := s.store.Holdings()
	if err != nil {
		s.writeError(w, err)
		return
	}

	report, err := s.risk.AnalyzePortfolio(r.Context(), holdings)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// handleStockRisk returns the risk profile for one symbol.
// GET /api/risk/{symbol}
func (s *Server) handleStockRisk(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	metrics, err := s.risk.InstrumentRisk(r.Context(), symbol)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, metrics)
}

// addHoldingRequest is the POST /api/portfolio payload.
type addHoldingRequest struct {
	Symbol   string  `json:"symbol"`
	Shares   float64 `json:"shares"`
	AvgCost  float64 `json:"avg_cost"`
	Currency string  `json:"currency"`
}

// handlePortfolioList returns all holdings.
// GET /api/portfolio
func (s *Server) handlePortfolioList(w http.ResponseWriter, r *http.Request) {
	holdings, err := s.store.Holdings()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if holdings == nil {
		holdings = []domain.Holding{}
	}
	s.writeJSON(w, http.StatusOK, holdings)
}

// handlePortfolioAdd creates a holding and logs the BUY transaction. The
// display name is resolved from the quote when available.
// POST /api/portfolio
func (s *Server) handlePortfolioAdd(w http.ResponseWriter, r *http.Request) {
	var req addHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Symbol == "" || req.Shares <= 0 || req.AvgCost <= 0 {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "symbol, shares and avg_cost are required"})
		return
	}

	if _, err := s.store.HoldingBySymbol(req.Symbol); err == nil {
		s.writeJSON(w, http.StatusConflict, map[string]string{"error": "holding already exists, update it instead"})
		return
	} else if !portfolio.IsNotFound(err) {
		s.writeError(w, err)
		return
	}

	name := req.Symbol
	if quote, err := s.market.GetQuote(r.Context(), req.Symbol); err == nil && quote.Name != "" {
		name = quote.Name
	}

	id, err := s.store.AddHolding(req.Symbol, name, req.Shares, req.AvgCost, req.Currency)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := s.store.AddTransaction(req.Symbol, "BUY", req.Shares, req.AvgCost, req.Currency, ""); err != nil {
		s.log.Warn().Err(err).Str("symbol", req.Symbol).Msg("Failed to log transaction")
	}

	s.writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "id": id})
}

// updateHoldingRequest is the PUT /api/portfolio/{id} payload. Omitted
// fields stay unchanged.
type updateHoldingRequest struct {
	Shares  *float64 `json:"shares"`
	AvgCost *float64 `json:"avg_cost"`
}

// handlePortfolioUpdate updates shares and/or average cost of a holding.
// PUT /api/portfolio/{id}
func (s *Server) handlePortfolioUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid holding id"})
		return
	}

	var req updateHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	updated, err := s.store.UpdateHolding(id, req.Shares, req.AvgCost)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !updated {
		s.writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// handlePortfolioDelete removes a holding.
// DELETE /api/portfolio/{id}
func (s *Server) handlePortfolioDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid holding id"})
		return
	}

	deleted, err := s.store.DeleteHolding(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !deleted {
		s.writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// handleTransactionList returns recent trades, newest first.
// GET /api/portfolio/transactions?symbol=AAPL&limit=50
func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	transactions, err := s.store.Transactions(r.URL.Query().Get("symbol"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	s.writeJSON(w, http.StatusOK, transactions)
}

// addWatchRequest is the POST /api/watchlist payload.
type addWatchRequest struct {
	Symbol string `json:"symbol"`
}

// handleWatchlistList returns all tracked symbols.
// GET /api/watchlist
func (s *Server) handleWatchlistList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.Watchlist()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if items == nil {
		items = []domain.WatchItem{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

// handleWatchlistAdd tracks a symbol. success is false when the symbol
// is already on the list.
// POST /api/watchlist
func (s *Server) handleWatchlistAdd(w http.ResponseWriter, r *http.Request) {
	var req addWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symbol == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "symbol is required"})
		return
	}

	name := req.Symbol
	if quote, err := s.market.GetQuote(r.Context(), req.Symbol); err == nil && quote.Name != "" {
		name = quote.Name
	}

	added, err := s.store.AddWatch(req.Symbol, name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"success": added})
}

// handleWatchlistRemove stops tracking a symbol.
// DELETE /api/watchlist/{symbol}
func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	removed, err := s.store.RemoveWatch(chi.URLParam(r, "symbol"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"success": removed})
}

// handleReportGenerate builds and persists a daily report on demand.
// GET /api/report/generate
func (s *Server) handleReportGenerate(w http.ResponseWriter, r *http.Request) {
	report, err := s.reporter.GenerateDaily(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// handleReportLatest returns the most recent persisted daily report.
// GET /api/report/latest
func (s *Server) handleReportLatest(w http.ResponseWriter, r *http.Request) {
	report, err := s.reporter.LatestDaily()
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no report generated yet"})
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// writeJSON writes a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError maps domain sentinel errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrEmptyPortfolio):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingMarketData):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientData):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("Request failed")
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
