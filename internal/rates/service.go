package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pricescanner/aggregator/internal/storage"
	"github.com/pricescanner/aggregator/internal/types"
)

const (
	// FreshWindow is how long a fetched table is served without a refresh attempt.
	FreshWindow = 12 * time.Hour

	// StaleWindow is how long a cached table remains usable as a fallback
	// after refresh failures.
	StaleWindow = 72 * time.Hour

	// storageKey is where the table snapshot is persisted.
	storageKey = "rates/latest.json"
)

// Provider fetches a rate table for a base currency from an external source.
type Provider interface {
	Fetch(ctx context.Context, base string) (*types.RateTable, error)
}

// Service owns the cached exchange-rate table. The cache is replaced
// wholesale on successful refresh and may be read concurrently; no
// other component writes the persisted snapshot.
type Service struct {
	mu       sync.RWMutex
	table    *types.RateTable
	provider Provider
	store    storage.Storage
	base     string
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a rate service and loads any persisted table.
// A corrupt or missing snapshot is treated as absent.
func NewService(ctx context.Context, provider Provider, store storage.Storage, base string) *Service {
	s := &Service{
		provider: provider,
		store:    store,
		base:     strings.ToUpper(base),
		logger:   log.With().Str("component", "rates").Logger(),
		now:      time.Now,
	}

	if store != nil {
		if raw, err := store.Get(ctx, storageKey); err == nil {
			var table types.RateTable
			if err := json.Unmarshal(raw, &table); err != nil || table.Base == "" || len(table.Rates) == 0 {
				s.logger.Warn().Msg("Discarding corrupt persisted rate table")
			} else {
				s.table = &table
			}
		} else if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("Failed to load persisted rate table")
		}
	}

	return s
}

// Refresh fetches a new table from the provider, stamps it, and
// persists it. The in-memory table is only replaced on success.
func (s *Service) Refresh(ctx context.Context) error {
	table, err := s.provider.Fetch(ctx, s.base)
	if err != nil {
		refreshFailures.Inc()
		return fmt.Errorf("rate fetch failed: %w", err)
	}
	if table.Base == "" || len(table.Rates) == 0 {
		refreshFailures.Inc()
		return fmt.Errorf("rate source returned empty table for base %s", s.base)
	}

	table.Base = strings.ToUpper(table.Base)
	table.Rates[table.Base] = 1
	table.FetchedAt = s.now()

	s.mu.Lock()
	s.table = table
	s.mu.Unlock()

	if s.store != nil {
		raw, err := json.Marshal(table)
		if err != nil {
			return fmt.Errorf("failed to marshal rate table: %w", err)
		}
		if err := s.store.Put(ctx, storageKey, raw); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to persist rate table")
		}
	}

	s.logger.Info().Str("base", table.Base).Int("currencies", len(table.Rates)).Msg("Rate table refreshed")
	return nil
}

// Table returns the table to convert with right now. A fresh cached
// table is returned as-is; otherwise a refresh is attempted, falling
// back to a stale-but-usable cache and finally to the degenerate
// single-currency table. Never returns nil and never errors: rate
// problems degrade to identity conversions, not failures.
func (s *Service) Table(ctx context.Context) *types.RateTable {
	s.mu.RLock()
	cached := s.table
	s.mu.RUnlock()

	now := s.now()
	if cached != nil && now.Sub(cached.FetchedAt) <= FreshWindow {
		return cached
	}

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Rate refresh failed")
		if cached != nil && now.Sub(cached.FetchedAt) <= StaleWindow {
			staleServed.Inc()
			return cached
		}
		return Degenerate()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// PriceIn returns a pricing function that expresses any offer's price
// in the given display currency against the supplied table. Conversion
// fallbacks are counted but otherwise silent, per the converter contract.
func PriceIn(currency string, table *types.RateTable) func(types.Offer) float64 {
	return func(o types.Offer) float64 {
		amount, converted := Convert(o.Price, o.Currency, currency, table)
		if !converted {
			conversionFallbacks.WithLabelValues(strings.ToUpper(o.Currency)).Inc()
		}
		return amount
	}
}
