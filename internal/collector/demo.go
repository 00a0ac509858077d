package collector

import (
	"context"
	"hash/fnv"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"StockPercentile/internal/model"
)

// demoHistoryDays is five years of trading days.
const demoHistoryDays = 5 * 252

// DemoFetcher returns synthetic random-walk data for development and for
// running without an API key. Quote and history for the same symbol come
// from one generator, so repeated calls on one fetcher agree with each other.
type DemoFetcher struct {
	Seed int64
	now  func() time.Time
}

// NewDemoFetcher creates a demo fetcher. A zero seed is replaced by the clock.
func NewDemoFetcher(seed int64) *DemoFetcher {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DemoFetcher{Seed: seed, now: time.Now}
}

func (f *DemoFetcher) Name() string { return SourceDemo }

func (f *DemoFetcher) FetchQuote(_ context.Context, symbol string) (model.Quote, error) {
	q, _ := f.generate(symbol, demoHistoryDays)
	recordCall(f.Name(), nil)
	return q, nil
}

func (f *DemoFetcher) FetchHistory(_ context.Context, symbol string, days int) ([]model.PricePoint, error) {
	_, points := f.generate(symbol, max(days, demoHistoryDays))
	recordCall(f.Name(), nil)
	return points, nil
}

// generate returns a quote and an oldest-first daily series.
func (f *DemoFetcher) generate(symbol string, days int) (model.Quote, []model.PricePoint) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	r := rand.New(rand.NewPCG(uint64(f.Seed), h.Sum64()))

	basePrice := r.Float64()*200 + 50
	current := round2(basePrice + (r.Float64()-0.5)*20)
	change := round2((r.Float64() - 0.5) * 10)
	var changePct float64
	if prev := current - change; prev != 0 {
		changePct = round2(change / prev * 100)
	}

	today := truncateDay(f.now().UTC())
	points := make([]model.PricePoint, 0, days+1)
	price := basePrice
	for i := days; i >= 0; i-- {
		price += (r.Float64() - 0.5) * price * 0.03
		price = max(price, basePrice*0.2)
		points = append(points, model.PricePoint{
			Date:  today.AddDate(0, 0, -i),
			Close: round2(price),
		})
	}

	return model.Quote{Symbol: symbol, Price: current, Change: change, ChangePercent: changePct}, points
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
