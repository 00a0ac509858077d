package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"StockPercentile/internal/model"
)

// AlpacaFetcher implements Fetcher using the Alpaca market data API.
type AlpacaFetcher struct {
	Client *marketdata.Client
	now    func() time.Time
}

// NewAlpacaFetcher creates a fetcher; an empty baseURL uses the SDK default.
func NewAlpacaFetcher(apiKey, apiSecret, baseURL, proxyURL string) *AlpacaFetcher {
	return &AlpacaFetcher{
		Client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:     apiKey,
			APISecret:  apiSecret,
			BaseURL:    baseURL,
			HTTPClient: newHTTPClient(proxyURL),
		}),
		now: time.Now,
	}
}

func (f *AlpacaFetcher) Name() string { return SourceAlpaca }

// FetchHistory requests enough calendar days to cover the trading days asked for.
func (f *AlpacaFetcher) FetchHistory(_ context.Context, symbol string, days int) (points []model.PricePoint, err error) {
	defer func() { recordCall(f.Name(), err) }()

	end := f.now()
	start := end.AddDate(0, 0, -calendarDays(days))
	bars, err := f.Client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca bars %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("alpaca bars %s: %w", symbol, ErrNoData)
	}
	return barsToPoints(bars), nil
}

func (f *AlpacaFetcher) FetchQuote(_ context.Context, symbol string) (q model.Quote, err error) {
	defer func() { recordCall(f.Name(), err) }()

	snap, err := f.Client.GetSnapshot(symbol, marketdata.GetSnapshotRequest{})
	if err != nil {
		return model.Quote{}, fmt.Errorf("alpaca snapshot %s: %w", symbol, err)
	}
	return snapshotToQuote(symbol, snap)
}

func barsToPoints(bars []marketdata.Bar) []model.PricePoint {
	points := make([]model.PricePoint, len(bars))
	for i, b := range bars {
		points[i] = model.PricePoint{Date: truncateDay(b.Timestamp.UTC()), Close: b.Close}
	}
	return points
}

func snapshotToQuote(symbol string, snap *marketdata.Snapshot) (model.Quote, error) {
	if snap == nil || snap.LatestTrade == nil {
		return model.Quote{}, fmt.Errorf("alpaca snapshot %s: %w", symbol, ErrNoData)
	}
	q := model.Quote{Symbol: symbol, Price: snap.LatestTrade.Price}
	if snap.PrevDailyBar != nil && snap.PrevDailyBar.Close != 0 {
		prev := snap.PrevDailyBar.Close
		q.Change = q.Price - prev
		q.ChangePercent = q.Change / prev * 100
	}
	return q, nil
}

// calendarDays converts trading days to calendar days with a holiday margin.
func calendarDays(tradingDays int) int {
	return tradingDays*365/252 + 10
}
