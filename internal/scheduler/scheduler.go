package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc/pool"

	"StockPercentile/internal/collector"
	"StockPercentile/internal/model"
	"StockPercentile/internal/notifier"
	"StockPercentile/internal/recorder"
	"StockPercentile/internal/watchlist"
)

// Ranker produces a percentile report for one symbol.
type Ranker interface {
	Collect(ctx context.Context, symbol string) (*model.Report, error)
}

// Scheduler refreshes the watchlist on a cron schedule and answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector Ranker
	Watchlist *watchlist.Manager
	Notifier  notifier.Notifier // nil disables notifications
	Recorder  recorder.Recorder
	Workers   int
	Ctx       context.Context
	now       func() time.Time
}

// RefreshResult is the outcome of one watchlist pass.
type RefreshResult struct {
	Reports []*model.Report       // watchlist order, failures omitted
	Changed map[string]model.Band // symbol -> band before this refresh
	Failed  map[string]string     // symbol -> error text
	At      time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col Ranker, wl *watchlist.Manager, n notifier.Notifier, rec recorder.Recorder, workers int) *Scheduler {
	if workers <= 0 {
		workers = 1
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Watchlist: wl,
		Notifier:  n,
		Recorder:  rec,
		Workers:   workers,
		Ctx:       ctx,
		now:       time.Now,
	}
}

// Register schedules the watchlist refresh.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register watchlist task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the refresh task immediately.
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running watchlist refresh")
	res := s.Refresh(s.Ctx)
	log.Printf("[INFO] watchlist refresh done: %d ok, %d failed", len(res.Reports), len(res.Failed))
	if len(res.Reports) == 0 && len(res.Failed) == 0 {
		return
	}
	s.trySend(notifier.FormatDigest(res.Reports, res.Changed, res.Failed, res.At))
}

// Refresh ranks every watchlist symbol with at most Workers lookups in flight.
func (s *Scheduler) Refresh(ctx context.Context) *RefreshResult {
	symbols := s.Watchlist.Symbols()
	res := &RefreshResult{
		Changed: make(map[string]model.Band),
		Failed:  make(map[string]string),
		At:      s.now(),
	}

	reports := make([]*model.Report, len(symbols))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(s.Workers)
	for i, sym := range symbols {
		p.Go(func() {
			report, err := s.lookup(ctx, sym)
			if err != nil {
				log.Printf("[ERROR] refresh %s: %v", sym, err)
				mu.Lock()
				res.Failed[sym] = err.Error()
				mu.Unlock()
				return
			}
			reports[i] = report

			prev, err := s.Watchlist.RecordBand(report)
			if err != nil {
				log.Printf("[WARN] record band %s: %v", sym, err)
			}
			if prev != "" && prev != report.Interpretation.Band {
				mu.Lock()
				res.Changed[sym] = prev
				mu.Unlock()
			}
		})
	}
	p.Wait()

	for _, r := range reports {
		if r != nil {
			res.Reports = append(res.Reports, r)
		}
	}
	return res
}

// lookup collects one report and records it.
func (s *Scheduler) lookup(ctx context.Context, symbol string) (*model.Report, error) {
	report, err := s.Collector.Collect(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if err := s.Recorder.RecordLookup(recorder.LookupFromReport(report)); err != nil {
		log.Printf("[ERROR] record lookup %s: %v", report.Symbol, err)
	}
	return report, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	// Telegram appends @botname to commands in group chats.
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch cmd {
	case "/rank":
		if arg == "" {
			return "Usage: /rank SYMBOL"
		}
		report, err := s.lookup(s.Ctx, arg)
		if err != nil {
			return fmt.Sprintf("❌ %s: %v", collector.NormalizeSymbol(arg), err)
		}
		return notifier.FormatReport(report)
	case "/watchlist":
		res := s.Refresh(s.Ctx)
		return notifier.FormatDigest(res.Reports, res.Changed, res.Failed, res.At)
	case "/add":
		sym, err := s.Watchlist.Add(arg)
		return watchlistReply("added to", sym, err)
	case "/remove":
		sym, err := s.Watchlist.Remove(arg)
		return watchlistReply("removed from", sym, err)
	default:
		return notifier.HelpText
	}
}

func watchlistReply(verb, symbol string, err error) string {
	switch {
	case errors.Is(err, collector.ErrEmptySymbol):
		return "Usage: /add SYMBOL or /remove SYMBOL"
	case errors.Is(err, watchlist.ErrDuplicate), errors.Is(err, watchlist.ErrNotFound):
		return fmt.Sprintf("%s: %v", symbol, err)
	case err != nil:
		return fmt.Sprintf("❌ %s %s the watchlist, but saving failed: %v", symbol, verb, err)
	}
	return fmt.Sprintf("✅ %s %s the watchlist", symbol, verb)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
