package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/pricescanner/aggregator/internal/types"
)

// watchesSchema creates the watch table. Entries are stored as JSONB
// documents keyed by their derived ID; ordering is preserved through an
// explicit position column because the list is newest-first by design.
const watchesSchema = `
CREATE TABLE IF NOT EXISTS watches (
	id        TEXT PRIMARY KEY,
	position  INT NOT NULL,
	doc       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// WatchStore is a postgres-backed implementation of watchlist.Store.
type WatchStore struct {
	pool *pgxpool.Pool
}

// NewWatchStore creates the store and ensures the schema exists
func NewWatchStore(ctx context.Context, pool *pgxpool.Pool) (*WatchStore, error) {
	if _, err := pool.Exec(ctx, watchesSchema); err != nil {
		return nil, fmt.Errorf("failed to ensure watches schema: %w", err)
	}
	return &WatchStore{pool: pool}, nil
}

// Load reads all watches ordered by position
func (s *WatchStore) Load(ctx context.Context) ([]types.WatchEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT doc FROM watches ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query watches: %w", err)
	}
	defer rows.Close()

	watches := make([]types.WatchEntry, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan watch row: %w", err)
		}
		var w types.WatchEntry
		if err := json.Unmarshal(raw, &w); err != nil {
			// Corrupt document: treat as absent rather than failing the load.
			log.Warn().Err(err).Msg("Skipping corrupt watch document")
			continue
		}
		watches = append(watches, w)
	}
	return watches, rows.Err()
}

// Save replaces the stored list with the given snapshot in one
// transaction.
func (s *WatchStore) Save(ctx context.Context, watches []types.WatchEntry) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM watches`); err != nil {
		return fmt.Errorf("failed to clear watches: %w", err)
	}

	for i, w := range watches {
		doc, err := json.Marshal(w)
		if err != nil {
			return fmt.Errorf("failed to marshal watch %s: %w", w.ID, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO watches (id, position, doc, updated_at)
			VALUES ($1, $2, $3, NOW())
		`, w.ID, i, doc); err != nil {
			return fmt.Errorf("failed to insert watch %s: %w", w.ID, err)
		}
	}

	return tx.Commit(ctx)
}
