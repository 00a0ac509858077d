package model

import "time"

// Band classifies the 1-year percentile.
type Band string

const (
	BandInsufficient Band = "INSUFFICIENT"
	BandLow          Band = "LOW"
	BandBelowMedian  Band = "BELOW_MEDIAN"
	BandAboveMedian  Band = "ABOVE_MEDIAN"
	BandHigh         Band = "HIGH"
)

// Interpretation is the advisory text derived from a set of percentiles.
type Interpretation struct {
	Band      Band   `json:"band"`
	Message   string `json:"message"`
	Divergent bool   `json:"divergent"` // 1y and 5y differ by more than 20 points
}

// Report is the full answer to a percentile lookup for one symbol.
type Report struct {
	ID             string         `json:"id"`
	Symbol         string         `json:"symbol"`
	Source         string         `json:"source"`
	Demo           bool           `json:"demo"`
	Quote          Quote          `json:"quote"`
	Percentiles    Percentiles    `json:"percentiles"`
	Interpretation Interpretation `json:"interpretation"`
	GeneratedAt    time.Time      `json:"generatedAt"`
}
