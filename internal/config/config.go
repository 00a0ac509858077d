package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockPercentile/internal/collector"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr        string `yaml:"addr"`
		StaticDir   string `yaml:"static_dir"`
		CacheMaxAge *int   `yaml:"cache_max_age"`
	} `yaml:"server"`
	DataSource struct {
		Provider       string `yaml:"provider"`
		APIKey         string `yaml:"api_key"`
		APISecret      string `yaml:"api_secret"`
		BaseURL        string `yaml:"base_url"`
		HistoryDays    int    `yaml:"history_days"`
		FallbackToDemo *bool  `yaml:"fallback_to_demo"`
		DemoSeed       int64  `yaml:"demo_seed"`
	} `yaml:"data_source"`
	Watchlist struct {
		Symbols   []string `yaml:"symbols"`
		Cron      string   `yaml:"cron"`
		Workers   int      `yaml:"workers"`
		StateFile string   `yaml:"state_file"`
	} `yaml:"watchlist"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Option adjusts the configuration after the file and generic environment
// overrides are read, before provider credentials and defaults are resolved.
type Option func(*Config)

// WithProvider forces the data source provider. An empty provider is ignored.
func WithProvider(provider string) Option {
	return func(c *Config) {
		if provider != "" {
			c.DataSource.Provider = provider
		}
	}
}

// Load reads config from a YAML file and an optional .env file, then applies
// environment variable overrides, options and defaults.
func Load(path string, opts ...Option) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the process environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	applyEnv(cfg)
	for _, opt := range opts {
		opt(cfg)
	}
	applyProviderEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		cfg.Server.StaticDir = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Watchlist.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("CRON_WATCHLIST"); v != "" {
		cfg.Watchlist.Cron = v
	}
	if v := os.Getenv("WATCHLIST_STATE"); v != "" {
		cfg.Watchlist.StateFile = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
}

// applyProviderEnv reads credentials for the final provider only.
func applyProviderEnv(cfg *Config) {
	switch cfg.DataSource.Provider {
	case collector.SourceAlphaVantage:
		if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
			cfg.DataSource.APIKey = v
		}
	case collector.SourceAlpaca:
		if v := os.Getenv("ALPACA_API_KEY"); v != "" {
			cfg.DataSource.APIKey = v
		}
		if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
			cfg.DataSource.APISecret = v
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":3001"
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = "public"
	}
	if cfg.Server.CacheMaxAge == nil {
		maxAge := 3600
		cfg.Server.CacheMaxAge = &maxAge
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = collector.SourceDemo
	}
	// The public "demo" key only serves a handful of symbols; treat it as no key.
	if cfg.DataSource.Provider == collector.SourceAlphaVantage &&
		(cfg.DataSource.APIKey == "" || cfg.DataSource.APIKey == "demo") {
		log.Println("[WARN] no Alpha Vantage API key configured, using demo data")
		cfg.DataSource.Provider = collector.SourceDemo
	}
	if cfg.DataSource.HistoryDays == 0 {
		cfg.DataSource.HistoryDays = 1260
	}
	if cfg.DataSource.FallbackToDemo == nil {
		on := true
		cfg.DataSource.FallbackToDemo = &on
	}
	if cfg.Watchlist.Cron == "" {
		cfg.Watchlist.Cron = "0 0 22 * * 1-5"
	}
	if cfg.Watchlist.Workers == 0 {
		cfg.Watchlist.Workers = 4
	}
	if cfg.Watchlist.StateFile == "" {
		cfg.Watchlist.StateFile = "data/watchlist.json"
	}
	for i, s := range cfg.Watchlist.Symbols {
		cfg.Watchlist.Symbols[i] = collector.NormalizeSymbol(s)
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stock_percentile.db"
	}
}

func splitSymbols(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case collector.SourceAlphaVantage, collector.SourceYahoo, collector.SourceDemo:
	case collector.SourceAlpaca:
		if c.DataSource.APIKey == "" || c.DataSource.APISecret == "" {
			return fmt.Errorf("data_source.api_key and data_source.api_secret are required for alpaca")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.HistoryDays <= 0 {
		return fmt.Errorf("data_source.history_days must be positive")
	}
	if c.Watchlist.Workers <= 0 {
		return fmt.Errorf("watchlist.workers must be positive")
	}
	if *c.Server.CacheMaxAge < 0 {
		return fmt.Errorf("server.cache_max_age must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether a Telegram chat is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// FetcherOptions returns the collector options for the configured provider.
func (c *Config) FetcherOptions() collector.Options {
	return collector.Options{
		APIKey:    c.DataSource.APIKey,
		APISecret: c.DataSource.APISecret,
		BaseURL:   c.DataSource.BaseURL,
		Proxy:     c.Proxy,
		Seed:      c.DataSource.DemoSeed,
	}
}

// NewCollector builds the configured fetcher, plus the demo fallback when
// enabled and the primary source is not already demo.
func (c *Config) NewCollector() (*collector.Collector, error) {
	opts := c.FetcherOptions()
	primary, err := collector.NewFetcher(c.DataSource.Provider, opts)
	if err != nil {
		return nil, err
	}

	var fallback collector.Fetcher
	if *c.DataSource.FallbackToDemo && primary.Name() != collector.SourceDemo {
		fallback = collector.NewDemoFetcher(opts.Seed)
	}
	return collector.NewCollector(primary, fallback, c.DataSource.HistoryDays), nil
}
