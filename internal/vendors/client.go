package vendors

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pricescanner/aggregator/internal/httpx"
	"github.com/pricescanner/aggregator/internal/types"
)

// SearchClient is what the coordinator needs from a vendor backend.
type SearchClient interface {
	Search(ctx context.Context, vendor, query string, page, pageSize int) ([]types.RawOffer, error)
	Enrich(ctx context.Context, vendor, offerID string) (*types.Enrichment, error)
}

// BackendClient talks to the external vendor-search worker service. The
// backend does the scraping; this client only consumes its JSON and is
// deliberately tolerant: a failing vendor yields an error the caller
// absorbs as an empty result set, never a batch failure.
type BackendClient struct {
	baseURL string
	http    *httpx.Client
	logger  zerolog.Logger
}

// NewBackendClient creates a client for the given backend base URL
func NewBackendClient(baseURL string, client *httpx.Client) *BackendClient {
	if client == nil {
		client = httpx.NewClientDefault()
	}
	return &BackendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    client,
		logger:  log.With().Str("component", "vendor_client").Logger(),
	}
}

// searchResponse is the backend's search envelope. Note and Error are
// diagnostics only.
type searchResponse struct {
	Results []types.RawOffer `json:"results"`
	Note    string           `json:"note,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// Search queries the backend for one vendor's listings. A non-2xx
// response is zero results, not an error that should abort the batch;
// malformed bodies do surface as errors for the caller to log.
func (c *BackendClient) Search(ctx context.Context, vendor, query string, page, pageSize int) ([]types.RawOffer, error) {
	if !IsValid(vendor) {
		return nil, fmt.Errorf("unknown vendor %q", vendor)
	}

	q := url.Values{}
	q.Set("vendor", strings.ToLower(vendor))
	q.Set("q", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var resp searchResponse
	err := c.http.GetJSON(ctx, c.baseURL+"/search?"+q.Encode(), &resp)
	if err != nil {
		var statusErr *httpx.StatusError
		if errors.As(err, &statusErr) {
			c.logger.Warn().Str("vendor", vendor).Int("status", statusErr.Status).Msg("Vendor search returned non-OK status")
			return []types.RawOffer{}, nil
		}
		return nil, err
	}

	if resp.Error != "" {
		c.logger.Warn().Str("vendor", vendor).Str("error", resp.Error).Msg("Vendor search reported backend error")
	}
	if resp.Note != "" {
		c.logger.Debug().Str("vendor", vendor).Str("note", resp.Note).Msg("Vendor search note")
	}

	if resp.Results == nil {
		return []types.RawOffer{}, nil
	}
	return resp.Results, nil
}

// Enrich fetches refreshed price/currency/url details for one offer.
func (c *BackendClient) Enrich(ctx context.Context, vendor, offerID string) (*types.Enrichment, error) {
	if offerID == "" {
		return nil, fmt.Errorf("offer id is required for enrichment")
	}

	q := url.Values{}
	q.Set("vendor", strings.ToLower(vendor))
	q.Set("id", offerID)

	var e types.Enrichment
	if err := c.http.GetJSON(ctx, c.baseURL+"/item?"+q.Encode(), &e); err != nil {
		return nil, err
	}
	if e.Price <= 0 {
		return nil, fmt.Errorf("enrichment for %s/%s returned non-positive price", vendor, offerID)
	}
	return &e, nil
}
