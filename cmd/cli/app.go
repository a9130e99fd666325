package main

import (
	"context"
	"fmt"

	"github.com/pricescanner/aggregator/config"
	"github.com/pricescanner/aggregator/internal/httpx"
	"github.com/pricescanner/aggregator/internal/rates"
	"github.com/pricescanner/aggregator/internal/search"
	"github.com/pricescanner/aggregator/internal/storage"
	"github.com/pricescanner/aggregator/internal/vendors"
	"github.com/pricescanner/aggregator/internal/watchlist"
)

// app bundles the services a CLI command works with
type app struct {
	cfg         *config.Config
	store       storage.Storage
	rates       *rates.Service
	coordinator *search.Coordinator
	watches     *watchlist.Service
}

// buildApp wires up services from the loaded config. Every command
// shares the same local storage and rate table the server uses.
func buildApp(ctx context.Context) (*app, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}

	store, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}

	retryConfig := httpx.DefaultRetryConfig()
	retryConfig.MaxRetries = cfg.Backend.MaxRetries
	retryConfig.RequestTimeout = cfg.Backend.RequestTimeout
	httpClient := httpx.NewClient(retryConfig)

	ratesService := rates.NewService(ctx, rates.NewHTTPProvider(cfg.Rates.URL, httpClient), store, cfg.Rates.Base)

	coordinator := search.NewCoordinator(
		vendors.NewBackendClient(cfg.Backend.URL, httpClient),
		search.Config{PageSize: cfg.Backend.PageSize, EnrichTop: cfg.Backend.EnrichTop},
	)

	watches, err := watchlist.NewService(ctx, watchlist.NewSnapshotStore(store))
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}

	return &app{
		cfg:         cfg,
		store:       store,
		rates:       ratesService,
		coordinator: coordinator,
		watches:     watches,
	}, nil
}
