package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPercentile/internal/collector"
	"StockPercentile/internal/model"
	"StockPercentile/internal/recorder"
	"StockPercentile/internal/watchlist"
)

type stubRanker struct {
	bands    map[string]model.Band
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *stubRanker) Collect(_ context.Context, symbol string) (*model.Report, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	symbol = collector.NormalizeSymbol(symbol)
	band, ok := s.bands[symbol]
	if !ok {
		return nil, errors.New("no data")
	}
	return &model.Report{
		ID:     "id-" + symbol,
		Symbol: symbol,
		Quote:  model.Quote{Symbol: symbol, Price: 100},
		Percentiles: model.Percentiles{
			model.Window1Y: {Percentile: 50, SampleCount: 252},
		},
		Interpretation: model.Interpretation{Band: band},
	}, nil
}

type memRecorder struct {
	mu     sync.Mutex
	events []*recorder.LookupEvent
}

func (m *memRecorder) RecordLookup(evt *recorder.LookupEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

func (m *memRecorder) RecentLookups(int) ([]recorder.LookupEvent, error) { return nil, nil }
func (m *memRecorder) Close() error                                      { return nil }

type memNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (m *memNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, text)
	return nil
}

func newTestScheduler(t *testing.T, symbols []string, bands map[string]model.Band) (*Scheduler, *stubRanker, *memRecorder) {
	t.Helper()
	wl, err := watchlist.NewManager("", symbols)
	require.NoError(t, err)
	ranker := &stubRanker{bands: bands}
	rec := &memRecorder{}
	s := NewScheduler(context.Background(), ranker, wl, nil, rec, 2)
	return s, ranker, rec
}

func TestRefresh(t *testing.T) {
	bands := map[string]model.Band{
		"AAPL": model.BandLow,
		"MSFT": model.BandHigh,
		"NVDA": model.BandAboveMedian,
		"TSLA": model.BandBelowMedian,
	}
	s, ranker, rec := newTestScheduler(t, []string{"AAPL", "MSFT", "ZZZZ", "NVDA", "TSLA"}, bands)

	res := s.Refresh(context.Background())

	require.Len(t, res.Reports, 4)
	var order []string
	for _, r := range res.Reports {
		order = append(order, r.Symbol)
	}
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA", "TSLA"}, order, "reports keep watchlist order")
	assert.Equal(t, map[string]string{"ZZZZ": "no data"}, res.Failed)
	assert.Empty(t, res.Changed, "first refresh has nothing to compare against")
	assert.Len(t, rec.events, 4)
	assert.LessOrEqual(t, ranker.peak.Load(), int32(2), "pool bounds concurrency")
}

func TestRefresh_BandChange(t *testing.T) {
	bands := map[string]model.Band{"AAPL": model.BandLow, "MSFT": model.BandHigh}
	s, ranker, _ := newTestScheduler(t, []string{"AAPL", "MSFT"}, bands)

	s.Refresh(context.Background())
	ranker.bands["AAPL"] = model.BandBelowMedian
	res := s.Refresh(context.Background())

	assert.Equal(t, map[string]model.Band{"AAPL": model.BandLow}, res.Changed)
}

func TestRunNow_SendsDigest(t *testing.T) {
	s, _, _ := newTestScheduler(t, []string{"AAPL"}, map[string]model.Band{"AAPL": model.BandLow})
	n := &memNotifier{}
	s.Notifier = n

	s.RunNow()

	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "<b>AAPL</b>")
}

func TestRunNow_EmptyWatchlistIsSilent(t *testing.T) {
	s, _, _ := newTestScheduler(t, nil, nil)
	n := &memNotifier{}
	s.Notifier = n

	s.RunNow()
	assert.Empty(t, n.sent)
}

func TestRunNow_NilNotifier(t *testing.T) {
	s, _, _ := newTestScheduler(t, []string{"AAPL"}, map[string]model.Band{"AAPL": model.BandLow})
	assert.NotPanics(t, s.RunNow)
}

func TestRegister(t *testing.T) {
	s, _, _ := newTestScheduler(t, nil, nil)
	require.NoError(t, s.Register("0 0 22 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.Register("not a cron"))
}

func TestHandleCommand(t *testing.T) {
	bands := map[string]model.Band{"AAPL": model.BandLow}
	s, _, rec := newTestScheduler(t, []string{"AAPL"}, bands)

	reply := s.HandleCommand("/rank aapl")
	assert.Contains(t, reply, "<b>AAPL</b>")
	require.Len(t, rec.events, 1, "bot lookups are recorded")

	assert.Contains(t, s.HandleCommand("/rank"), "Usage: /rank SYMBOL")
	assert.Contains(t, s.HandleCommand("/rank nope"), "❌ NOPE: no data")

	assert.Contains(t, s.HandleCommand("/add msft"), "✅ MSFT added to the watchlist")
	assert.Contains(t, s.HandleCommand("/add MSFT"), "already on watchlist")
	assert.Equal(t, []string{"AAPL", "MSFT"}, s.Watchlist.Symbols())

	assert.Contains(t, s.HandleCommand("/remove msft"), "✅ MSFT removed from the watchlist")
	assert.Contains(t, s.HandleCommand("/remove msft"), "not on watchlist")
	assert.Contains(t, s.HandleCommand("/add"), "Usage")

	digest := s.HandleCommand("/watchlist@PercentileBot")
	assert.Contains(t, digest, "<b>Watchlist</b>")
	assert.Contains(t, digest, "<b>AAPL</b>")

	for _, cmd := range []string{"/help", "hello", ""} {
		assert.True(t, strings.Contains(s.HandleCommand(cmd), "/rank SYMBOL"), cmd)
	}
}
