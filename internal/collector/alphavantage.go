package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"StockPercentile/internal/model"
)

const defaultAlphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantageFetcher implements Fetcher using the Alpha Vantage query API.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAlphaVantageFetcher creates a new fetcher with optional proxy support.
func NewAlphaVantageFetcher(apiKey, baseURL, proxyURL string) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = defaultAlphaVantageBaseURL
	}
	return &AlphaVantageFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *AlphaVantageFetcher) Name() string { return SourceAlphaVantage }

// avStatus carries the fields Alpha Vantage uses to report failures with a 200.
type avStatus struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

func (s avStatus) err() error {
	switch {
	case s.ErrorMessage != "":
		return fmt.Errorf("alphavantage api error: %s", s.ErrorMessage)
	case s.Note != "":
		return fmt.Errorf("alphavantage rate limited: %s", s.Note)
	case s.Information != "":
		return fmt.Errorf("alphavantage: %s", s.Information)
	}
	return nil
}

type avQuote struct {
	avStatus
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

type avDaily struct {
	avStatus
	TimeSeries map[string]struct {
		Close string `json:"4. close"`
	} `json:"Time Series (Daily)"`
}

func (f *AlphaVantageFetcher) query(ctx context.Context, params url.Values, out interface{}) (err error) {
	defer func() { recordCall(f.Name(), err) }()

	params.Set("apikey", f.APIKey)
	endpoint := fmt.Sprintf("%s/query?%s", f.BaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}

	var status avStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return fmt.Errorf("alphavantage decode: %w", err)
	}
	if err := status.err(); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("alphavantage decode: %w", err)
	}
	return nil
}

func (f *AlphaVantageFetcher) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	var result avQuote
	params := url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {symbol}}
	if err := f.query(ctx, params, &result); err != nil {
		return model.Quote{}, err
	}
	gq := result.GlobalQuote
	if gq.Price == "" {
		return model.Quote{}, fmt.Errorf("alphavantage quote %s: %w", symbol, ErrNoData)
	}

	price, err := parseNumber("price", gq.Price)
	if err != nil {
		return model.Quote{}, err
	}
	change, err := parseNumber("change", gq.Change)
	if err != nil {
		return model.Quote{}, err
	}
	changePct, err := parseNumber("change percent", strings.TrimSuffix(gq.ChangePercent, "%"))
	if err != nil {
		return model.Quote{}, err
	}

	name := gq.Symbol
	if name == "" {
		name = symbol
	}
	return model.Quote{Symbol: name, Price: price, Change: change, ChangePercent: changePct}, nil
}

// FetchHistory returns the full daily series; days is ignored because the
// API only offers compact (100 points) or full output.
func (f *AlphaVantageFetcher) FetchHistory(ctx context.Context, symbol string, days int) ([]model.PricePoint, error) {
	var result avDaily
	params := url.Values{"function": {"TIME_SERIES_DAILY"}, "symbol": {symbol}, "outputsize": {"full"}}
	if days > 0 && days <= 100 {
		params.Set("outputsize", "compact")
	}
	if err := f.query(ctx, params, &result); err != nil {
		return nil, err
	}
	if len(result.TimeSeries) == 0 {
		return nil, fmt.Errorf("alphavantage history %s: %w", symbol, ErrNoData)
	}

	points := make([]model.PricePoint, 0, len(result.TimeSeries))
	for day, values := range result.TimeSeries {
		d, err := time.Parse(model.DateLayout, day)
		if err != nil {
			return nil, fmt.Errorf("alphavantage history %s: bad date %q: %w", symbol, day, err)
		}
		c, err := parseNumber("close on "+day, values.Close)
		if err != nil {
			return nil, err
		}
		points = append(points, model.PricePoint{Date: d, Close: c})
	}
	return points, nil
}

// parseNumber rejects malformed upstream numbers instead of coercing them.
func parseNumber(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("alphavantage: malformed %s %q: %w", field, s, err)
	}
	return v, nil
}
