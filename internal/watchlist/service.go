package watchlist

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pricescanner/aggregator/internal/types"
)

// ErrDuplicate is returned when a watch with the same derived ID
// already exists.
var ErrDuplicate = fmt.Errorf("watch already exists")

// ErrNotFound is returned when no watch has the given ID.
var ErrNotFound = fmt.Errorf("watch not found")

// Service owns the in-memory watch list, loaded once at startup and
// written back through the store only when an operation actually
// changed something.
type Service struct {
	mu      sync.RWMutex
	watches []types.WatchEntry
	store   Store
	logger  zerolog.Logger
}

// NewService creates a watch service and loads the persisted list.
func NewService(ctx context.Context, store Store) (*Service, error) {
	watches, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load watch list: %w", err)
	}

	return &Service{
		watches: watches,
		store:   store,
		logger:  log.With().Str("component", "watchlist").Logger(),
	}, nil
}

// List returns a copy of the current watch list.
func (s *Service) List() []types.WatchEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.WatchEntry, len(s.watches))
	for i, w := range s.watches {
		out[i] = w.Clone()
	}
	return out
}

// Add inserts a new watch at the head of the list. Duplicate IDs are
// rejected.
func (s *Service) Add(ctx context.Context, entry types.WatchEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.watches {
		if w.ID == entry.ID {
			return ErrDuplicate
		}
	}

	s.watches = append([]types.WatchEntry{entry}, s.watches...)
	return s.persist(ctx)
}

// Remove deletes a watch by ID.
func (s *Service) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, w := range s.watches {
		if w.ID == id {
			s.watches = append(s.watches[:i], s.watches[i+1:]...)
			return s.persist(ctx)
		}
	}
	return ErrNotFound
}

// UpdateThresholds sets the trigger thresholds of a watch. A nil value
// clears the corresponding threshold.
func (s *Service) UpdateThresholds(ctx context.Context, id string, targetPrice, discountPct *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.watches {
		if s.watches[i].ID == id {
			s.watches[i].TargetPrice = targetPrice
			s.watches[i].DiscountPct = discountPct
			return s.persist(ctx)
		}
	}
	return ErrNotFound
}

// ResetBaseline clears a watch's baseline so the next successful match
// re-initializes it.
func (s *Service) ResetBaseline(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.watches {
		if s.watches[i].ID == id {
			s.watches[i].Baseline = nil
			return s.persist(ctx)
		}
	}
	return ErrNotFound
}

// Refresh evaluates all watches against the current result set and
// persists only when the pass changed something. Returns the
// notifications for watches that newly triggered.
func (s *Service) Refresh(ctx context.Context, offers []types.Offer, price PriceFunc) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := Evaluate(s.watches, offers, price)
	s.watches = result.Watches

	if result.Changed {
		if err := s.persist(ctx); err != nil {
			return result.Notifications, err
		}
	}

	for _, n := range result.Notifications {
		s.logger.Info().
			Str("watch", n.WatchID).
			Str("vendor", n.Vendor).
			Float64("price", n.Price).
			Msg("Watch triggered")
	}

	return result.Notifications, nil
}

// persist writes the list through the store. Callers hold the lock.
func (s *Service) persist(ctx context.Context) error {
	if err := s.store.Save(ctx, s.watches); err != nil {
		return fmt.Errorf("failed to persist watch list: %w", err)
	}
	return nil
}
