package search

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricescanner/aggregator/internal/types"
)

// fakeClient serves canned per-vendor results with optional per-vendor
// errors, delays and enrichments
type fakeClient struct {
	mu          sync.Mutex
	results     map[string][]types.RawOffer
	errs        map[string]error
	delays      map[string]time.Duration
	enrichments map[string]types.Enrichment
	searches    int
}

func (f *fakeClient) Search(ctx context.Context, vendor, query string, page, pageSize int) ([]types.RawOffer, error) {
	f.mu.Lock()
	delay := f.delays[vendor]
	err := f.errs[vendor]
	raws := f.results[vendor]
	f.searches++
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return raws, nil
}

func (f *fakeClient) Enrich(ctx context.Context, vendor, offerID string) (*types.Enrichment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.enrichments[vendor+"/"+offerID]
	if !ok {
		return nil, fmt.Errorf("no enrichment")
	}
	return &e, nil
}

func testSession(vendors ...string) types.Session {
	return types.Session{
		Query:   "mouse",
		Vendors: vendors,
		Country: "US",
	}
}

func TestSearchFanOut(t *testing.T) {
	client := &fakeClient{
		results: map[string][]types.RawOffer{
			"amazon": {{ID: "a1", Title: "Mouse", Price: 25}},
			"ebay":   {{ID: "e1", Title: "Mouse", Price: 22}},
		},
	}
	c := NewCoordinator(client, Config{PageSize: 20})

	pools := c.Search(context.Background(), testSession("amazon", "ebay"))

	require.Len(t, pools, 2)
	require.Len(t, pools["amazon"], 1)
	require.Len(t, pools["ebay"], 1)
	// Offers come back normalized
	assert.Equal(t, "USD", pools["amazon"][0].Currency)
	assert.Equal(t, "amazon", pools["amazon"][0].Vendor)
	assert.Equal(t, 3, pools["amazon"][0].ShipDays)
}

func TestSearchVendorFailureIsolated(t *testing.T) {
	client := &fakeClient{
		results: map[string][]types.RawOffer{
			"amazon": {{ID: "a1", Title: "Mouse", Price: 25}},
		},
		errs: map[string]error{
			"ebay": fmt.Errorf("backend down"),
		},
	}
	c := NewCoordinator(client, Config{PageSize: 20})

	pools := c.Search(context.Background(), testSession("amazon", "ebay"))

	assert.Len(t, pools["amazon"], 1, "healthy vendor unaffected by the failing one")
	assert.Empty(t, pools["ebay"], "failed vendor contributes an empty pool")
}

func TestSearchEnrichment(t *testing.T) {
	client := &fakeClient{
		results: map[string][]types.RawOffer{
			"amazon": {
				{ID: "a1", Title: "Mouse", Price: 25},
				{ID: "a2", Title: "Mouse Pro", Price: 40},
			},
		},
		enrichments: map[string]types.Enrichment{
			"amazon/a1": {Price: 23.5, URL: "https://amazon.example/a1"},
		},
	}
	c := NewCoordinator(client, Config{PageSize: 20, EnrichTop: 1})

	pools := c.Search(context.Background(), testSession("amazon"))

	require.Len(t, pools["amazon"], 2)
	assert.Equal(t, 23.5, pools["amazon"][0].Price, "enriched price applied")
	assert.Equal(t, 40.0, pools["amazon"][1].Price, "offer beyond the enrich window untouched")
}

func TestSearchEnrichmentFailureKeepsOffer(t *testing.T) {
	client := &fakeClient{
		results: map[string][]types.RawOffer{
			"amazon": {{ID: "a1", Title: "Mouse", Price: 25}},
		},
		// no enrichments registered, every Enrich call fails
	}
	c := NewCoordinator(client, Config{PageSize: 20, EnrichTop: 3})

	pools := c.Search(context.Background(), testSession("amazon"))

	require.Len(t, pools["amazon"], 1)
	assert.Equal(t, 25.0, pools["amazon"][0].Price)
}

func TestSearchStaleResponseDiscarded(t *testing.T) {
	client := &fakeClient{
		results: map[string][]types.RawOffer{
			"amazon": {{ID: "slow", Title: "Old Mouse", Price: 99}},
		},
		delays: map[string]time.Duration{
			"amazon": 150 * time.Millisecond,
		},
	}
	c := NewCoordinator(client, Config{PageSize: 20})

	// Slow first request in flight
	done := make(chan struct{})
	go func() {
		c.Search(context.Background(), testSession("amazon"))
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)

	// Second request for the same vendor is fast and newer
	client.mu.Lock()
	client.results["amazon"] = []types.RawOffer{{ID: "fast", Title: "New Mouse", Price: 10}}
	client.delays["amazon"] = 0
	client.mu.Unlock()

	pools := c.Search(context.Background(), testSession("amazon"))
	require.Len(t, pools["amazon"], 1)
	assert.Equal(t, "fast", pools["amazon"][0].ID)

	<-done

	// The slow response must not have clobbered the newer one
	pools = c.Pools([]string{"amazon"})
	require.Len(t, pools["amazon"], 1)
	assert.Equal(t, "fast", pools["amazon"][0].ID, "stale slow response overwrote a newer result")
}

func TestPoolsWithoutRequests(t *testing.T) {
	client := &fakeClient{
		results: map[string][]types.RawOffer{
			"amazon": {{ID: "a1", Title: "Mouse", Price: 25}},
		},
	}
	c := NewCoordinator(client, Config{PageSize: 20})

	assert.Empty(t, c.Pools([]string{"amazon"}), "no cache before any search")

	c.Search(context.Background(), testSession("amazon"))
	assert.Len(t, c.Pools([]string{"amazon"})["amazon"], 1)
	assert.Equal(t, 1, client.searches, "Pools must not issue requests")
}

func TestDebouncerRunsOnlyLastTrigger(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	var runs []int

	for i := 0; i < 5; i++ {
		i := i
		d.Trigger(func() {
			mu.Lock()
			runs = append(runs, i)
			mu.Unlock()
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(120 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, runs, 1, "only the last trigger should fire")
	assert.Equal(t, 4, runs[0])
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	fired := make(chan struct{}, 1)
	d.Trigger(func() { fired <- struct{}{} })
	d.Stop()

	select {
	case <-fired:
		t.Error("stopped trigger still fired")
	case <-time.After(100 * time.Millisecond):
	}
}
