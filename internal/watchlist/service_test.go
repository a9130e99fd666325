package watchlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricescanner/aggregator/internal/storage"
	"github.com/pricescanner/aggregator/internal/types"
)

// countingStore wraps an in-memory list and counts Save calls
type countingStore struct {
	watches []types.WatchEntry
	saves   int
}

func (s *countingStore) Load(ctx context.Context) ([]types.WatchEntry, error) {
	return s.watches, nil
}

func (s *countingStore) Save(ctx context.Context, watches []types.WatchEntry) error {
	s.watches = append([]types.WatchEntry(nil), watches...)
	s.saves++
	return nil
}

func newTestService(t *testing.T) (*Service, *countingStore) {
	t.Helper()
	store := &countingStore{}
	svc, err := NewService(context.Background(), store)
	require.NoError(t, err)
	return svc, store
}

func TestServiceAddAndList(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, watchFor("mouse", "amazon")))
	require.NoError(t, svc.Add(ctx, watchFor("keyboard", "ebay")))

	watches := svc.List()
	require.Len(t, watches, 2)
	// Newest first
	assert.Equal(t, "keyboard", watches[0].Title)
	assert.Equal(t, "mouse", watches[1].Title)
	assert.Equal(t, 2, store.saves)
}

func TestServiceAddDuplicateRejected(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, watchFor("mouse", "amazon")))
	err := svc.Add(ctx, watchFor("mouse", "amazon"))
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, 1, store.saves, "rejected add must not persist")
}

func TestServiceRemove(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	w := watchFor("mouse", "amazon")
	require.NoError(t, svc.Add(ctx, w))
	require.NoError(t, svc.Remove(ctx, w.ID))
	assert.Empty(t, svc.List())

	assert.ErrorIs(t, svc.Remove(ctx, "missing"), ErrNotFound)
}

func TestServiceUpdateThresholds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	w := watchFor("mouse", "amazon")
	require.NoError(t, svc.Add(ctx, w))

	require.NoError(t, svc.UpdateThresholds(ctx, w.ID, types.Float64Ptr(99), nil))

	got := svc.List()[0]
	require.NotNil(t, got.TargetPrice)
	assert.Equal(t, 99.0, *got.TargetPrice)
	assert.Nil(t, got.DiscountPct)
}

func TestServiceResetBaseline(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	w := watchFor("mouse", "amazon")
	w.Baseline = types.Float64Ptr(200)
	require.NoError(t, svc.Add(ctx, w))

	require.NoError(t, svc.ResetBaseline(ctx, w.ID))
	assert.Nil(t, svc.List()[0].Baseline)

	// Next match re-initializes the baseline at the new price
	_, err := svc.Refresh(ctx, []types.Offer{{Title: "Mouse", Vendor: "amazon", Price: 150}}, identityPrice)
	require.NoError(t, err)
	got := svc.List()[0]
	require.NotNil(t, got.Baseline)
	assert.Equal(t, 150.0, *got.Baseline)
}

func TestServiceRefreshPersistsOnlyOnChange(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	w := watchFor("mouse", "amazon")
	w.TargetPrice = types.Float64Ptr(100)
	require.NoError(t, svc.Add(ctx, w))
	savesAfterAdd := store.saves

	offers := []types.Offer{{Title: "Mouse", Vendor: "amazon", Price: 95}}

	notifications, err := svc.Refresh(ctx, offers, identityPrice)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, savesAfterAdd+1, store.saves)

	// Identical second pass changes nothing and writes nothing
	notifications, err = svc.Refresh(ctx, offers, identityPrice)
	require.NoError(t, err)
	assert.Empty(t, notifications)
	assert.Equal(t, savesAfterAdd+1, store.saves)
}

func TestServiceListReturnsCopies(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	w := watchFor("mouse", "amazon")
	w.Baseline = types.Float64Ptr(100)
	require.NoError(t, svc.Add(ctx, w))

	leaked := svc.List()[0]
	*leaked.Baseline = 1

	assert.Equal(t, 100.0, *svc.List()[0].Baseline, "List must deep-copy entries")
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	backing, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store := NewSnapshotStore(backing)
	ctx := context.Background()

	// Missing snapshot loads empty
	watches, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, watches)

	w := watchFor("mouse", "amazon")
	w.TargetPrice = types.Float64Ptr(99)
	require.NoError(t, store.Save(ctx, []types.WatchEntry{w}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, w.ID, loaded[0].ID)
	assert.Equal(t, 99.0, *loaded[0].TargetPrice)
}

func TestSnapshotStoreCorruptIgnored(t *testing.T) {
	backing, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, backing.Put(context.Background(), "watchlist/watches.json", []byte("{oops")))

	store := NewSnapshotStore(backing)
	watches, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, watches, "corrupt snapshot must load as empty")
}
