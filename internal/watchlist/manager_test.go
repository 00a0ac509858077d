package watchlist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPercentile/internal/collector"
	"StockPercentile/internal/model"
)

func report(symbol string, band model.Band, p1y float64) *model.Report {
	return &model.Report{
		Symbol: symbol,
		Percentiles: model.Percentiles{
			model.Window1Y: {Percentile: p1y, SampleCount: 252},
		},
		Interpretation: model.Interpretation{Band: band},
		GeneratedAt:    time.Date(2025, 9, 12, 22, 0, 0, 0, time.UTC),
	}
}

func TestNewManager_SeedsFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "watchlist.json")

	m, err := NewManager(path, []string{" aapl", "MSFT", "aapl", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, m.Symbols())

	_, err = os.Stat(path)
	require.NoError(t, err, "state file is written on first load")
}

func TestNewManager_FileWinsOverConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")

	m, err := NewManager(path, []string{"AAPL"})
	require.NoError(t, err)
	_, err = m.Add("tsla")
	require.NoError(t, err)

	reloaded, err := NewManager(path, []string{"IGNORED"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "TSLA"}, reloaded.Symbols())
}

func TestAddRemove(t *testing.T) {
	m, err := NewManager("", nil)
	require.NoError(t, err)

	sym, err := m.Add(" nvda ")
	require.NoError(t, err)
	assert.Equal(t, "NVDA", sym)

	_, err = m.Add("NVDA")
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = m.Add("  ")
	assert.ErrorIs(t, err, collector.ErrEmptySymbol)

	_, err = m.Remove("spy")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.RecordBand(report("NVDA", model.BandHigh, 90))
	require.NoError(t, err)
	_, err = m.Remove("nvda")
	require.NoError(t, err)
	assert.Empty(t, m.Symbols())
	_, ok := m.Last("NVDA")
	assert.False(t, ok, "removing a symbol drops its last result")
}

func TestRecordBand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	m, err := NewManager(path, []string{"AAPL"})
	require.NoError(t, err)

	prev, err := m.RecordBand(report("AAPL", model.BandLow, 10))
	require.NoError(t, err)
	assert.Equal(t, model.Band(""), prev)

	prev, err = m.RecordBand(report("AAPL", model.BandBelowMedian, 30))
	require.NoError(t, err)
	assert.Equal(t, model.BandLow, prev)

	reloaded, err := NewManager(path, nil)
	require.NoError(t, err)
	e, ok := reloaded.Last("aapl")
	require.True(t, ok)
	assert.Equal(t, model.BandBelowMedian, e.Band)
	require.NotNil(t, e.Percentile1Y)
	assert.Equal(t, 30.0, *e.Percentile1Y)
}

func TestSymbolsReturnsCopy(t *testing.T) {
	m, err := NewManager("", []string{"AAPL"})
	require.NoError(t, err)

	s := m.Symbols()
	s[0] = "MUTATED"
	assert.Equal(t, []string{"AAPL"}, m.Symbols())
}

func TestLoadState_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewManager(path, nil)
	assert.Error(t, err)
}
