package collector

import (
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarsToPoints(t *testing.T) {
	ts := time.Date(2025, 9, 12, 4, 0, 0, 0, time.UTC)
	points := barsToPoints([]marketdata.Bar{
		{Timestamp: ts, Close: 101.5},
		{Timestamp: ts.AddDate(0, 0, 1), Close: 102},
	})
	require.Len(t, points, 2)
	assert.Equal(t, time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, 102.0, points[1].Close)
}

func TestSnapshotToQuote(t *testing.T) {
	q, err := snapshotToQuote("AAPL", &marketdata.Snapshot{
		LatestTrade:  &marketdata.Trade{Price: 110},
		PrevDailyBar: &marketdata.Bar{Close: 100},
	})
	require.NoError(t, err)
	assert.Equal(t, 110.0, q.Price)
	assert.Equal(t, 10.0, q.Change)
	assert.Equal(t, 10.0, q.ChangePercent)

	q, err = snapshotToQuote("AAPL", &marketdata.Snapshot{LatestTrade: &marketdata.Trade{Price: 5}})
	require.NoError(t, err)
	assert.Zero(t, q.Change)

	_, err = snapshotToQuote("AAPL", &marketdata.Snapshot{})
	assert.ErrorIs(t, err, ErrNoData)
	_, err = snapshotToQuote("AAPL", nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCalendarDays(t *testing.T) {
	assert.Equal(t, 375, calendarDays(252))
	assert.Equal(t, 1835, calendarDays(1260))
}
