package watchlist

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/pricescanner/aggregator/internal/storage"
	"github.com/pricescanner/aggregator/internal/types"
)

// storageKey is where the watch list snapshot is persisted.
const storageKey = "watchlist/watches.json"

// Store persists the watch list as one serializable snapshot.
type Store interface {
	Load(ctx context.Context) ([]types.WatchEntry, error)
	Save(ctx context.Context, watches []types.WatchEntry) error
}

// SnapshotStore keeps the watch list as a JSON document in a generic
// key-value storage backend. A corrupt stored value is treated as
// absent and the list re-initializes empty.
type SnapshotStore struct {
	store storage.Storage
}

// NewSnapshotStore creates a storage-backed watch store
func NewSnapshotStore(store storage.Storage) *SnapshotStore {
	return &SnapshotStore{store: store}
}

// Load reads the persisted watch list
func (s *SnapshotStore) Load(ctx context.Context) ([]types.WatchEntry, error) {
	raw, err := s.store.Get(ctx, storageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []types.WatchEntry{}, nil
		}
		return nil, err
	}

	var watches []types.WatchEntry
	if err := json.Unmarshal(raw, &watches); err != nil {
		log.Warn().Err(err).Msg("Discarding corrupt persisted watch list")
		return []types.WatchEntry{}, nil
	}
	return watches, nil
}

// Save replaces the persisted watch list
func (s *SnapshotStore) Save(ctx context.Context, watches []types.WatchEntry) error {
	raw, err := json.Marshal(watches)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, storageKey, raw)
}
