package recorder

import (
	"time"

	"StockPercentile/internal/model"
)

// LookupEvent is one recorded percentile lookup. Percentile pointers are nil
// for windows that had no data.
type LookupEvent struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Symbol       string    `json:"symbol"`
	Source       string    `json:"source"`
	Demo         bool      `json:"demo"`
	Price        float64   `json:"price"`
	Percentile1Y *float64  `json:"percentile1y"`
	Percentile3Y *float64  `json:"percentile3y"`
	Percentile5Y *float64  `json:"percentile5y"`
	Samples1Y    int       `json:"samples1y"`
	Samples3Y    int       `json:"samples3y"`
	Samples5Y    int       `json:"samples5y"`
	Band         string    `json:"band"`
	Divergent    bool      `json:"divergent"`
}

// LookupFromReport flattens a report into a LookupEvent.
func LookupFromReport(r *model.Report) *LookupEvent {
	evt := &LookupEvent{
		ID:        r.ID,
		Timestamp: r.GeneratedAt,
		Symbol:    r.Symbol,
		Source:    r.Source,
		Demo:      r.Demo,
		Price:     r.Quote.Price,
		Band:      string(r.Interpretation.Band),
		Divergent: r.Interpretation.Divergent,
	}
	evt.Percentile1Y, evt.Samples1Y = windowFields(r.Percentiles[model.Window1Y])
	evt.Percentile3Y, evt.Samples3Y = windowFields(r.Percentiles[model.Window3Y])
	evt.Percentile5Y, evt.Samples5Y = windowFields(r.Percentiles[model.Window5Y])
	return evt
}

func windowFields(res *model.PercentileResult) (*float64, int) {
	if res == nil {
		return nil, 0
	}
	p := res.Percentile
	return &p, res.SampleCount
}

// Recorder persists lookup history.
type Recorder interface {
	RecordLookup(evt *LookupEvent) error
	RecentLookups(limit int) ([]LookupEvent, error)
	Close() error
}
