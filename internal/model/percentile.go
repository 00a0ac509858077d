package model

// Window is a trailing horizon measured in trading-day observations.
type Window struct {
	Name string
	Size int
}

const (
	Window1Y = "1y"
	Window3Y = "3y"
	Window5Y = "5y"
)

// Windows lists the ranking horizons, shortest first. 252 approximates the
// number of trading days in a year.
var Windows = []Window{
	{Name: Window1Y, Size: 252},
	{Name: Window3Y, Size: 756},
	{Name: Window5Y, Size: 1260},
}

// MaxWindowSize is the largest window; no series point past this index is read.
const MaxWindowSize = 1260

// PercentileResult describes where a price falls within one window.
type PercentileResult struct {
	Percentile  float64 `json:"percentile"` // 0 ~ 100, one decimal
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Avg         float64 `json:"avg"`
	SampleCount int     `json:"sampleCount"`
}

// Percentiles maps each window name to its result. A nil value means the
// window had no observations.
type Percentiles map[string]*PercentileResult
