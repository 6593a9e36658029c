// Package cache abstracts the short-lived key-value store that fronts
// catalog reads. The query layer only ever reads through or writes once
// with an expiry; entry lifetime is owned by the store itself, and no
// explicit invalidation path exists.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("cache: key not found")

// Cache is a key-value store with per-entry time-to-live. Implementations
// must be safe for concurrent use.
type Cache interface {
	// Get retrieves the bytes stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, unconditionally overwriting any existing
	// entry. The entry expires after ttl, measured from write time.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Ping verifies connectivity to the backing store.
	Ping(ctx context.Context) error

	// Close releases resources held by the implementation.
	Close() error
}
