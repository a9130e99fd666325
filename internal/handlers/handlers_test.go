package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricescanner/aggregator/internal/rates"
	"github.com/pricescanner/aggregator/internal/search"
	"github.com/pricescanner/aggregator/internal/types"
	"github.com/pricescanner/aggregator/internal/watchlist"
)

// fakeSearchClient serves canned per-vendor results
type fakeSearchClient struct {
	results map[string][]types.RawOffer
}

func (f *fakeSearchClient) Search(ctx context.Context, vendor, query string, page, pageSize int) ([]types.RawOffer, error) {
	return f.results[vendor], nil
}

func (f *fakeSearchClient) Enrich(ctx context.Context, vendor, offerID string) (*types.Enrichment, error) {
	return nil, nil
}

// fakeRateProvider serves a fixed table
type fakeRateProvider struct{}

func (fakeRateProvider) Fetch(ctx context.Context, base string) (*types.RateTable, error) {
	return &types.RateTable{
		Base:  "USD",
		Rates: map[string]float64{"USD": 1, "EUR": 0.9},
	}, nil
}

// memoryWatchStore keeps watches in memory
type memoryWatchStore struct {
	watches []types.WatchEntry
}

func (s *memoryWatchStore) Load(ctx context.Context) ([]types.WatchEntry, error) {
	return s.watches, nil
}

func (s *memoryWatchStore) Save(ctx context.Context, watches []types.WatchEntry) error {
	s.watches = append([]types.WatchEntry(nil), watches...)
	return nil
}

func setupRouter(t *testing.T, results map[string][]types.RawOffer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	coordinator := search.NewCoordinator(&fakeSearchClient{results: results}, search.Config{PageSize: 20})
	ratesService := rates.NewService(context.Background(), fakeRateProvider{}, nil, "USD")
	watches, err := watchlist.NewService(context.Background(), &memoryWatchStore{})
	require.NoError(t, err)

	searchHandler := NewSearchHandler(coordinator, ratesService, watches, "US", "USD")
	watchHandler := NewWatchHandler(watches, ratesService, "USD")
	ratesHandler := NewRatesHandler(ratesService)

	router := gin.New()
	router.GET("/api/search", searchHandler.Search)
	router.GET("/api/vendors", ListVendors)
	router.GET("/api/rates", ratesHandler.GetRates)
	router.GET("/api/watches", watchHandler.ListWatches)
	router.POST("/api/watches", watchHandler.CreateWatch)
	router.DELETE("/api/watches/:id", watchHandler.DeleteWatch)
	router.PATCH("/api/watches/:id", watchHandler.UpdateWatch)
	return router
}

func TestSearchEndpoint(t *testing.T) {
	router := setupRouter(t, map[string][]types.RawOffer{
		"amazon": {{ID: "a1", Title: "Wireless Mouse", Price: 25}},
		"ebay":   {{ID: "e1", Title: "Wireless Mouse Pro", Price: 22}},
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/search?q=mouse&vendors=amazon,ebay", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "ebay", resp.Results[0].Vendor, "cheapest first")
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "USD", resp.Currency)
}

func TestSearchEndpointClustered(t *testing.T) {
	router := setupRouter(t, map[string][]types.RawOffer{
		"amazon": {{ID: "a1", Title: "Acme Wireless Mouse X200", Price: 25}},
		"ebay":   {{ID: "e1", Title: "X200 Mouse Wireless Acme", Price: 22.5}},
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/search?q=mouse&vendors=amazon,ebay&cluster=true", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Groups, 1)
	assert.Len(t, resp.Groups[0].Offers, 2)
	assert.Empty(t, resp.Results)
}

func TestSearchEndpointValidation(t *testing.T) {
	router := setupRouter(t, nil)

	tests := []struct {
		name string
		url  string
	}{
		{"Missing query", "/api/search"},
		{"Unknown vendor", "/api/search?q=x&vendors=notashop"},
		{"Bad sort", "/api/search?q=x&sort=sideways"},
		{"Page size over cap", "/api/search?q=x&pageSize=1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", tt.url, nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestVendorsEndpoint(t *testing.T) {
	router := setupRouter(t, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/vendors", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ListVendorsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Vendors, 15)
	assert.Equal(t, "amazon", string(resp.Vendors[0].Slug))
}

func TestRatesEndpoint(t *testing.T) {
	router := setupRouter(t, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/rates", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp RatesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Table)
	assert.Equal(t, "USD", resp.Table.Base)
}

func TestWatchLifecycle(t *testing.T) {
	router := setupRouter(t, nil)

	// Create
	body, _ := json.Marshal(CreateWatchRequest{
		Title:       "wireless mouse",
		Vendors:     []string{"amazon", "ebay"},
		TargetPrice: types.Float64Ptr(19.99),
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/watches", bytes.NewReader(body))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created types.WatchEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "wireless mouse|amazon,ebay", created.ID)

	// Duplicate rejected
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/watches", bytes.NewReader(body))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	// List
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/watches", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var list ListWatchesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	// Update thresholds
	patch, _ := json.Marshal(UpdateWatchRequest{DiscountPct: types.Float64Ptr(20)})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PATCH", "/api/watches/"+created.ID, bytes.NewReader(patch))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Delete
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/watches/"+created.ID, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Delete again is a 404
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/watches/"+created.ID, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchTriggersWatchNotifications(t *testing.T) {
	router := setupRouter(t, map[string][]types.RawOffer{
		"amazon": {{ID: "a1", Title: "Wireless Mouse", Price: 15}},
	})

	// Watch with a target above the current price
	body, _ := json.Marshal(CreateWatchRequest{
		Title:       "wireless mouse",
		Vendors:     []string{"amazon"},
		TargetPrice: types.Float64Ptr(20),
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/watches", bytes.NewReader(body))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/search?q=mouse&vendors=amazon", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "amazon", resp.Notifications[0].Vendor)
	assert.Equal(t, 15.0, resp.Notifications[0].Price)
}
