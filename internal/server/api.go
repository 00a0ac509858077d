package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"StockPercentile/internal/calculator"
	"StockPercentile/internal/collector"
	"StockPercentile/internal/model"
	"StockPercentile/internal/recorder"
	"StockPercentile/internal/strategy"
)

const (
	defaultLookupLimit = 20
	maxLookupLimit     = 500
	maxRankBodyBytes   = 4 << 20
)

// RankRequest is the body of POST /api/rank. Series is ranked in the order given,
// most recent observation first.
type RankRequest struct {
	CurrentPrice *float64           `json:"currentPrice"`
	Series       []model.PricePoint `json:"series"`
}

// RankResponse is the engine output for a caller-supplied series.
type RankResponse struct {
	Percentiles    model.Percentiles    `json:"percentiles"`
	Interpretation model.Interpretation `json:"interpretation"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handlePercentile(w http.ResponseWriter, r *http.Request) {
	symbol := collector.NormalizeSymbol(r.URL.Query().Get("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	report, err := s.Collector.Collect(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, collector.ErrEmptySymbol) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[ERROR] percentile %s: %v", symbol, err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if err := s.Recorder.RecordLookup(recorder.LookupFromReport(report)); err != nil {
		log.Printf("[ERROR] record lookup %s: %v", symbol, err)
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRankBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.CurrentPrice == nil {
		writeError(w, http.StatusBadRequest, "currentPrice is required")
		return
	}

	percentiles := calculator.RankSeries(*req.CurrentPrice, req.Series)
	writeJSON(w, http.StatusOK, RankResponse{
		Percentiles:    percentiles,
		Interpretation: strategy.Interpret(percentiles),
	})
}

func (s *Server) handleLookups(w http.ResponseWriter, r *http.Request) {
	limit := defaultLookupLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLookupLimit)
	}

	lookups, err := s.Recorder.RecentLookups(limit)
	if err != nil {
		log.Printf("[ERROR] recent lookups: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load lookups")
		return
	}
	if lookups == nil {
		lookups = []recorder.LookupEvent{}
	}
	writeJSON(w, http.StatusOK, lookups)
}

func (s *Server) handleUsage(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, collector.Usage())
}
