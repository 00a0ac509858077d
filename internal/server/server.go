package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"StockPercentile/internal/model"
	"StockPercentile/internal/recorder"
)

// Ranker produces a percentile report for one symbol.
type Ranker interface {
	Collect(ctx context.Context, symbol string) (*model.Report, error)
}

// Server serves the static homepage and the percentile API.
type Server struct {
	Collector   Ranker
	Recorder    recorder.Recorder
	StaticDir   string
	CacheMaxAge int

	httpServer *http.Server
}

// New creates a Server listening on addr.
func New(addr string, col Ranker, rec recorder.Recorder, staticDir string, cacheMaxAge int) *Server {
	s := &Server{
		Collector:   col,
		Recorder:    rec,
		StaticDir:   staticDir,
		CacheMaxAge: cacheMaxAge,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the full route table wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/percentile", cors(s.handlePercentile))
	mux.HandleFunc("POST /api/rank", cors(s.handleRank))
	mux.HandleFunc("GET /api/lookups", cors(s.handleLookups))
	mux.HandleFunc("GET /api/usage", cors(s.handleUsage))
	mux.HandleFunc("OPTIONS /api/", cors(func(w http.ResponseWriter, r *http.Request) {}))
	mux.HandleFunc("GET /", s.handleStatic)
	return logRequests(mux)
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	log.Printf("[INFO] http server listening on %s, serving %s", s.httpServer.Addr, s.StaticDir)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("[INFO] shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
