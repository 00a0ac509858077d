package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the day-granularity layout used on the wire.
const DateLayout = "2006-01-02"

// PricePoint is a single daily closing price.
type PricePoint struct {
	Date  time.Time
	Close float64
}

type pricePointJSON struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

func (p PricePoint) MarshalJSON() ([]byte, error) {
	var date string
	if !p.Date.IsZero() {
		date = p.Date.Format(DateLayout)
	}
	return json.Marshal(pricePointJSON{Date: date, Close: p.Close})
}

func (p *PricePoint) UnmarshalJSON(data []byte) error {
	var raw pricePointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Close = raw.Close
	p.Date = time.Time{}
	if raw.Date != "" {
		d, err := time.Parse(DateLayout, raw.Date)
		if err != nil {
			return fmt.Errorf("parse date %q: %w", raw.Date, err)
		}
		p.Date = d
	}
	return nil
}

// Quote is the latest price of a symbol together with its daily change.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}
