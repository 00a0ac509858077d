package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPercentile/internal/collector"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":3001", cfg.Server.Addr)
	assert.Equal(t, "public", cfg.Server.StaticDir)
	require.NotNil(t, cfg.Server.CacheMaxAge)
	assert.Equal(t, 3600, *cfg.Server.CacheMaxAge)
	assert.Equal(t, collector.SourceDemo, cfg.DataSource.Provider)
	assert.Equal(t, 1260, cfg.DataSource.HistoryDays)
	require.NotNil(t, cfg.DataSource.FallbackToDemo)
	assert.True(t, *cfg.DataSource.FallbackToDemo)
	assert.Equal(t, "0 0 22 * * 1-5", cfg.Watchlist.Cron)
	assert.Equal(t, 4, cfg.Watchlist.Workers)
	assert.Equal(t, "data/watchlist.json", cfg.Watchlist.StateFile)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":8080"
data_source:
  provider: yahoo
  history_days: 800
  fallback_to_demo: false
watchlist:
  symbols: [" aapl", "msft "]
  workers: 2
telegram:
  bot_token: "tok"
`)
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("WATCHLIST", "")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, collector.SourceYahoo, cfg.DataSource.Provider)
	assert.Equal(t, 800, cfg.DataSource.HistoryDays)
	assert.False(t, *cfg.DataSource.FallbackToDemo)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Watchlist.Symbols)
	assert.Equal(t, 2, cfg.Watchlist.Workers)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, "/tmp/x.db", cfg.Database.SQLitePath)
}

func TestLoad_WatchlistEnv(t *testing.T) {
	t.Setenv("WATCHLIST", "tsla, ,nvda")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"TSLA", "NVDA"}, cfg.Watchlist.Symbols)
}

func TestLoad_AlphaVantageDemoKey(t *testing.T) {
	path := writeConfig(t, "data_source:\n  provider: alphavantage\n  api_key: demo\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, collector.SourceDemo, cfg.DataSource.Provider)

	t.Setenv("ALPHAVANTAGE_API_KEY", "real-key")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, collector.SourceAlphaVantage, cfg.DataSource.Provider)
	assert.Equal(t, "real-key", cfg.FetcherOptions().APIKey)
}

func TestLoad_CacheMaxAgeZeroDisablesCaching(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  cache_max_age: 0\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.NotNil(t, cfg.Server.CacheMaxAge)
	assert.Equal(t, 0, *cfg.Server.CacheMaxAge)
}

func TestLoad_ProviderOverride(t *testing.T) {
	path := writeConfig(t, "data_source:\n  provider: demo\n")
	t.Setenv("DATA_PROVIDER", "")

	t.Setenv("ALPHAVANTAGE_API_KEY", "REALKEY")
	cfg, err := Load(path, WithProvider(collector.SourceAlphaVantage))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, collector.SourceAlphaVantage, cfg.DataSource.Provider)
	assert.Equal(t, "REALKEY", cfg.FetcherOptions().APIKey)

	t.Setenv("ALPACA_API_KEY", "ak")
	t.Setenv("ALPACA_API_SECRET", "as")
	cfg, err = Load(path, WithProvider(collector.SourceAlpaca))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ak", cfg.FetcherOptions().APIKey)
	assert.Equal(t, "as", cfg.FetcherOptions().APISecret)

	t.Setenv("ALPHAVANTAGE_API_KEY", "")
	cfg, err = Load(path, WithProvider(collector.SourceAlphaVantage))
	require.NoError(t, err)
	assert.Equal(t, collector.SourceDemo, cfg.DataSource.Provider, "no key falls back to demo")

	cfg, err = Load(path, WithProvider(""))
	require.NoError(t, err)
	assert.Equal(t, collector.SourceDemo, cfg.DataSource.Provider)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }},
		{"alpaca without secret", func(c *Config) { c.DataSource.Provider = collector.SourceAlpaca; c.DataSource.APIKey = "k" }},
		{"zero history", func(c *Config) { c.DataSource.HistoryDays = -1 }},
		{"zero workers", func(c *Config) { c.Watchlist.Workers = -2 }},
		{"negative cache", func(c *Config) { n := -1; c.Server.CacheMaxAge = &n }},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "tok" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewCollector(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	col, err := cfg.NewCollector()
	require.NoError(t, err)
	assert.Equal(t, collector.SourceDemo, col.Fetcher.Name())
	assert.Nil(t, col.Fallback, "demo never falls back to itself")
	assert.Equal(t, 1260, col.HistoryDays)

	cfg.DataSource.Provider = collector.SourceYahoo
	col, err = cfg.NewCollector()
	require.NoError(t, err)
	assert.Equal(t, collector.SourceYahoo, col.Fetcher.Name())
	require.NotNil(t, col.Fallback)
	assert.Equal(t, collector.SourceDemo, col.Fallback.Name())

	off := false
	cfg.DataSource.FallbackToDemo = &off
	col, err = cfg.NewCollector()
	require.NoError(t, err)
	assert.Nil(t, col.Fallback)

	cfg.DataSource.Provider = "bloomberg"
	_, err = cfg.NewCollector()
	assert.ErrorIs(t, err, collector.ErrUnknownSource)
}
