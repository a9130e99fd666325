package rates

import (
	"context"
	"fmt"
	"strings"

	"github.com/pricescanner/aggregator/internal/httpx"
	"github.com/pricescanner/aggregator/internal/types"
)

// HTTPProvider fetches rate tables from an open exchange-rate endpoint
// of the form {url}/{base} returning {"base_code": "...", "rates": {...}}.
type HTTPProvider struct {
	baseURL string
	client  *httpx.Client
}

// NewHTTPProvider creates a provider against the given endpoint
func NewHTTPProvider(baseURL string, client *httpx.Client) *HTTPProvider {
	if client == nil {
		client = httpx.NewClientDefault()
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type rateResponse struct {
	// Both field spellings exist in the wild; BaseCode wins when set.
	BaseCode string             `json:"base_code"`
	Base     string             `json:"base"`
	Rates    map[string]float64 `json:"rates"`
}

// Fetch retrieves the rate table for the given base currency
func (p *HTTPProvider) Fetch(ctx context.Context, base string) (*types.RateTable, error) {
	url := fmt.Sprintf("%s/%s", p.baseURL, strings.ToUpper(base))

	var resp rateResponse
	if err := p.client.GetJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	resolvedBase := resp.BaseCode
	if resolvedBase == "" {
		resolvedBase = resp.Base
	}
	if resolvedBase == "" || len(resp.Rates) == 0 {
		return nil, fmt.Errorf("rate source returned no rates for %s", base)
	}

	rates := make(map[string]float64, len(resp.Rates))
	for code, rate := range resp.Rates {
		rates[strings.ToUpper(code)] = rate
	}

	return &types.RateTable{
		Base:  strings.ToUpper(resolvedBase),
		Rates: rates,
	}, nil
}
