package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no value exists at a key.
var ErrNotFound = errors.New("storage: key not found")

// Storage is the persistence collaborator interface. The aggregator
// round-trips plain JSON snapshots (watch list, exchange-rate table)
// through it; implementations can be local filesystem, S3, or any
// key-value shaped store.
type Storage interface {
	// Put stores content at the given key, replacing any prior value
	Put(ctx context.Context, key string, content []byte) error

	// Get retrieves content from the given key; ErrNotFound when absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists checks if a value exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the value at the given key
	Delete(ctx context.Context, key string) error

	// List returns all keys matching the given prefix
	List(ctx context.Context, prefix string) ([]string, error)
}
