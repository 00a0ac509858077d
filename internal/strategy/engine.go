package strategy

import (
	"math"

	"StockPercentile/internal/model"
)

// Bands maps the 1-year percentile to an advisory, highest floor first.
var Bands = []struct {
	MinPercentile float64
	Band          model.Band
	Message       string
}{
	{75, model.BandHigh, "The price sits in the upper quartile of its history. Risk is elevated; consider waiting for a pullback."},
	{50, model.BandAboveMedian, "The price is above its historical median and relatively high. Invest with caution."},
	{25, model.BandBelowMedian, "The price is below its historical median and looks reasonably valued. Buying on dips could be considered."},
}

// LowBand applies below the lowest floor in Bands.
var LowBand = struct {
	Band    model.Band
	Message string
}{model.BandLow, "The price is near the bottom of its recent range (lower quartile). There may be an opportunity, but check the fundamentals first."}

const (
	// InsufficientDataMessage is used when the 1-year window is empty.
	InsufficientDataMessage = "Insufficient data to offer guidance."
	// DivergenceCaveat is appended when short and long horizons disagree.
	DivergenceCaveat = " Note: the short- and long-term percentiles differ sharply; weigh the broader market trend."
	// DivergenceThreshold is the 1y/5y gap, in percentage points, that triggers the caveat.
	DivergenceThreshold = 20.0
)

// BandFor returns the band and advisory for a single percentile.
func BandFor(percentile float64) (model.Band, string) {
	for _, b := range Bands {
		if percentile >= b.MinPercentile {
			return b.Band, b.Message
		}
	}
	return LowBand.Band, LowBand.Message
}

// Interpret classifies the 1-year percentile and flags a 1y/5y divergence.
func Interpret(p model.Percentiles) model.Interpretation {
	oneYear := p[model.Window1Y]
	if oneYear == nil {
		return model.Interpretation{Band: model.BandInsufficient, Message: InsufficientDataMessage}
	}

	band, msg := BandFor(oneYear.Percentile)
	out := model.Interpretation{Band: band, Message: msg}

	if fiveYear := p[model.Window5Y]; fiveYear != nil {
		// Percentiles carry one decimal; compare in tenths so 70.3-50.3 is exactly 20.
		gap := math.Round(math.Abs(oneYear.Percentile-fiveYear.Percentile) * 10)
		if gap > DivergenceThreshold*10 {
			out.Divergent = true
			out.Message += DivergenceCaveat
		}
	}
	return out
}
