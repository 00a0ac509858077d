package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"StockPercentile/internal/calculator"
	"StockPercentile/internal/model"
	"StockPercentile/internal/strategy"
)

// ErrEmptySymbol is returned when Collect is given a blank symbol.
var ErrEmptySymbol = errors.New("symbol is required")

// Collector orchestrates data fetching and percentile ranking.
type Collector struct {
	Fetcher     Fetcher
	Fallback    Fetcher // optional, used when Fetcher fails
	HistoryDays int
	now         func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher, fallback Fetcher, historyDays int) *Collector {
	if historyDays <= 0 {
		historyDays = model.MaxWindowSize
	}
	return &Collector{Fetcher: fetcher, Fallback: fallback, HistoryDays: historyDays, now: time.Now}
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Collect fetches the quote and history for symbol and ranks the price.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.Report, error) {
	return c.collect(ctx, symbol, nil)
}

// CollectAt is Collect with the quoted price replaced by price, for "what if"
// lookups. The reported change is recomputed against the quote's previous close.
func (c *Collector) CollectAt(ctx context.Context, symbol string, price float64) (*model.Report, error) {
	return c.collect(ctx, symbol, &price)
}

func (c *Collector) collect(ctx context.Context, symbol string, price *float64) (*model.Report, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, ErrEmptySymbol
	}

	source := c.Fetcher
	quote, series, err := c.fetch(ctx, source, symbol)
	if err != nil {
		if c.Fallback == nil || ctx.Err() != nil {
			return nil, err
		}
		log.Printf("[WARN] %s failed for %s: %v, falling back to %s", source.Name(), symbol, err, c.Fallback.Name())
		source = c.Fallback
		quote, series, err = c.fetch(ctx, source, symbol)
		if err != nil {
			return nil, fmt.Errorf("fallback %s: %w", source.Name(), err)
		}
	}

	if price != nil {
		quote = overridePrice(quote, *price)
	}
	report := c.Rank(symbol, source.Name(), quote, series)
	return report, nil
}

// Rank builds a report from already-fetched data. series may be in any order.
func (c *Collector) Rank(symbol, source string, quote model.Quote, series []model.PricePoint) *model.Report {
	series = NewestFirst(series, c.HistoryDays)
	percentiles := calculator.RankSeries(quote.Price, series)
	return &model.Report{
		ID:             uuid.NewString(),
		Symbol:         symbol,
		Source:         source,
		Demo:           source == SourceDemo,
		Quote:          quote,
		Percentiles:    percentiles,
		Interpretation: strategy.Interpret(percentiles),
		GeneratedAt:    c.now().UTC(),
	}
}

func overridePrice(q model.Quote, price float64) model.Quote {
	prev := q.Price - q.Change
	q.Price = price
	q.Change = price - prev
	q.ChangePercent = 0
	if prev != 0 {
		q.ChangePercent = q.Change / prev * 100
	}
	return q
}

func (c *Collector) fetch(ctx context.Context, f Fetcher, symbol string) (model.Quote, []model.PricePoint, error) {
	quote, err := f.FetchQuote(ctx, symbol)
	if err != nil {
		return model.Quote{}, nil, fmt.Errorf("fetch quote: %w", err)
	}
	series, err := f.FetchHistory(ctx, symbol, c.HistoryDays)
	if err != nil {
		return model.Quote{}, nil, fmt.Errorf("fetch history: %w", err)
	}
	return quote, series, nil
}

// NewestFirst returns a copy of points sorted by date descending and trimmed
// to limit points (limit <= 0 keeps all). Equal dates keep their input order.
func NewestFirst(points []model.PricePoint, limit int) []model.PricePoint {
	out := make([]model.PricePoint, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
