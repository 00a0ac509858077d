package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockPercentile/internal/config"
	"StockPercentile/internal/notifier"
	"StockPercentile/internal/recorder"
	"StockPercentile/internal/scheduler"
	"StockPercentile/internal/server"
	"StockPercentile/internal/watchlist"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockPercentile homepage starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init collector
	col, err := cfg.NewCollector()
	if err != nil {
		log.Fatalf("[FATAL] init collector: %v", err)
	}
	log.Printf("[INFO] data source: %s (history %d days)", col.Fetcher.Name(), col.HistoryDays)
	if col.Fallback != nil {
		log.Printf("[INFO] fallback source: %s", col.Fallback.Name())
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	// Init watchlist
	wl, err := watchlist.NewManager(cfg.Watchlist.StateFile, cfg.Watchlist.Symbols)
	if err != nil {
		log.Fatalf("[FATAL] init watchlist: %v", err)
	}
	log.Printf("[INFO] watchlist: %v", wl.Symbols())

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Telegram notifier
	var (
		tn   *notifier.TelegramNotifier
		note notifier.Notifier
	)
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		note = tn
	} else {
		log.Println("[INFO] Telegram not configured, notifications disabled")
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, wl, note, rec, cfg.Watchlist.Workers)
	if err := sched.Register(cfg.Watchlist.Cron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: refresh the watchlist immediately
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, refreshing watchlist now")
		go sched.RunNow()
	}

	// Start HTTP server
	srv := server.New(cfg.Server.Addr, col, rec, cfg.Server.StaticDir, *cfg.Server.CacheMaxAge)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	log.Println("[INFO] StockPercentile is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal or a server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case err := <-errCh:
		if err != nil {
			log.Printf("[ERROR] http server: %v", err)
		}
	}

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] http shutdown: %v", err)
	}
	log.Println("[INFO] StockPercentile stopped")
}
