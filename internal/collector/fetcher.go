package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"StockPercentile/internal/model"
)

var (
	// ErrNoData is returned when a source answers but has nothing for the symbol.
	ErrNoData = errors.New("no data returned")
	// ErrUnknownSource is returned by NewFetcher for an unrecognised provider name.
	ErrUnknownSource = errors.New("unknown data source")
)

// Provider names accepted by NewFetcher.
const (
	SourceAlphaVantage = "alphavantage"
	SourceYahoo        = "yahoo"
	SourceAlpaca       = "alpaca"
	SourceDemo         = "demo"
)

// Fetcher defines the interface for fetching market data.
// FetchHistory may return points in any order.
type Fetcher interface {
	FetchQuote(ctx context.Context, symbol string) (model.Quote, error)
	FetchHistory(ctx context.Context, symbol string, days int) ([]model.PricePoint, error)
	Name() string
}

// Options configures the fetcher built by NewFetcher.
type Options struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Proxy     string
	Seed      int64
}

// NewFetcher builds the fetcher for the named provider.
func NewFetcher(provider string, opts Options) (Fetcher, error) {
	switch provider {
	case SourceAlphaVantage:
		return NewAlphaVantageFetcher(opts.APIKey, opts.BaseURL, opts.Proxy), nil
	case SourceYahoo:
		return NewYahooFetcher(opts.BaseURL, opts.Proxy), nil
	case SourceAlpaca:
		return NewAlpacaFetcher(opts.APIKey, opts.APISecret, opts.BaseURL, opts.Proxy), nil
	case SourceDemo:
		return NewDemoFetcher(opts.Seed), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, provider)
	}
}

// newHTTPClient returns a client with optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
