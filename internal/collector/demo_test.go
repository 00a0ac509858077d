package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedDemo(seed int64) *DemoFetcher {
	f := NewDemoFetcher(seed)
	f.now = func() time.Time { return time.Date(2025, 9, 13, 15, 0, 0, 0, time.UTC) }
	return f
}

func TestDemoFetcher_Deterministic(t *testing.T) {
	ctx := context.Background()
	a, b := fixedDemo(42), fixedDemo(42)

	qa, err := a.FetchQuote(ctx, "AAPL")
	require.NoError(t, err)
	qb, _ := b.FetchQuote(ctx, "AAPL")
	assert.Equal(t, qa, qb)

	ha, _ := a.FetchHistory(ctx, "AAPL", 252)
	hb, _ := b.FetchHistory(ctx, "AAPL", 252)
	assert.Equal(t, ha, hb)

	qc, _ := a.FetchQuote(ctx, "MSFT")
	assert.NotEqual(t, qa.Price, qc.Price)
}

func TestDemoFetcher_Shape(t *testing.T) {
	f := fixedDemo(1)
	q, err := f.FetchQuote(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.Equal(t, "TSLA", q.Symbol)
	assert.GreaterOrEqual(t, q.Price, 40.0)
	assert.Less(t, q.Price, 260.0)

	h, err := f.FetchHistory(context.Background(), "TSLA", 10)
	require.NoError(t, err)
	require.Len(t, h, demoHistoryDays+1)

	// oldest first, ending today
	assert.True(t, h[0].Date.Before(h[len(h)-1].Date))
	assert.Equal(t, time.Date(2025, 9, 13, 0, 0, 0, 0, time.UTC), h[len(h)-1].Date)
	for _, p := range h {
		assert.Greater(t, p.Close, 0.0)
		assert.InDelta(t, p.Close, round2(p.Close), 1e-9)
	}
}

func TestDemoFetcher_LongerHistory(t *testing.T) {
	h, err := fixedDemo(3).FetchHistory(context.Background(), "X", 2000)
	require.NoError(t, err)
	assert.Len(t, h, 2001)
}
