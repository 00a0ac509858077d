package calculator

import (
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"StockPercentile/internal/model"
)

// RankSeries ranks currentPrice against the most recent observations of each
// window. Only the first N points of series, in the order supplied, belong to
// an N-sized window, so callers pass the series newest-first.
//
// The result always holds every window name. A window with no observations
// maps to nil. RankSeries never fails and does not validate prices.
func RankSeries(currentPrice float64, series []model.PricePoint) model.Percentiles {
	out := make(model.Percentiles, len(model.Windows))
	for _, w := range model.Windows {
		out[w.Name] = rankWindow(currentPrice, series, w.Size)
	}
	return out
}

func rankWindow(currentPrice float64, series []model.PricePoint, size int) *model.PercentileResult {
	n := min(size, len(series))
	if n <= 0 {
		return nil
	}
	closes := extractCloses(series[:n])

	// Ties are not below.
	lower := 0
	for _, c := range closes {
		if c < currentPrice {
			lower++
		}
	}

	lo, hi := floats.Min(closes), floats.Max(closes)
	// Summation error can push the mean of a near-constant window just past its bounds.
	avg := clamp(stat.Mean(closes, nil), lo, hi)

	return &model.PercentileResult{
		Percentile:  roundPercent(float64(lower) / float64(n) * 100),
		Min:         lo,
		Max:         hi,
		Avg:         avg,
		SampleCount: n,
	}
}

// roundPercent rounds to one decimal place, halves away from zero.
func roundPercent(p float64) float64 {
	return decimal.NewFromFloat(p).Round(1).InexactFloat64()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func extractCloses(points []model.PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}
