package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

// Default HTTP source settings, matching the Yahoo Finance chart endpoint.
const (
	DefaultQuoteURL  = "https://query1.finance.yahoo.com/v8/finance/chart/%s"
	DefaultPricePath = "$.chart.result[0].meta.regularMarketPrice"
	defaultTimeout   = 5 * time.Second
	maxResponseBytes = 1 << 20
)

// HTTPFetcher reads prices from a JSON endpoint. The symbol is substituted
// into the URL template and the price is picked with a JSONPath expression.
type HTTPFetcher struct {
	urlTemplate string
	price       func(ctx context.Context, doc any) (float64, error)
	client      *http.Client
}

// NewHTTPFetcher compiles the price path and creates the fetcher.
func NewHTTPFetcher(urlTemplate, pricePath string, timeout time.Duration) (*HTTPFetcher, error) {
	if urlTemplate == "" {
		urlTemplate = DefaultQuoteURL
	}
	if pricePath == "" {
		pricePath = DefaultPricePath
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	eval, err := jsonpath.New(pricePath)
	if err != nil {
		return nil, fmt.Errorf("compile price path %q: %w", pricePath, err)
	}
	return &HTTPFetcher{
		urlTemplate: urlTemplate,
		price:       eval.EvalFloat64,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

// Fetch requests the quote document of symbol and extracts the price.
func (f *HTTPFetcher) Fetch(ctx context.Context, symbol string) (float64, error) {
	u := f.urlTemplate
	if strings.Contains(u, "%s") {
		u = fmt.Sprintf(u, url.PathEscape(symbol))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "bilanz/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return 0, fmt.Errorf("fetch %s: status %d: %w", symbol, resp.StatusCode, ErrBadStatus)
	}

	var doc any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&doc); err != nil {
		return 0, fmt.Errorf("decode %s: %w", symbol, err)
	}
	p, err := f.price(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %v", symbol, ErrNoPrice, err)
	}
	return p, nil
}
