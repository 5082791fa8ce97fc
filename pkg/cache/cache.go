// Package cache memoizes rendered exports.
//
// Rendering a large map to PNG or through Graphviz is slow compared to
// decoding it, and the HTTP service tends to see the same document exported
// repeatedly. Exports are keyed by the SHA-256 of the document's JSON form
// plus the format, so any edit produces a new key and stale entries simply
// age out.
//
// Backends:
//   - [FileCache]: files under a directory, for a single service instance
//   - [RedisCache]: shared across instances
//   - [NullCache]: disables caching
package cache

import (
	"context"
	"time"
)

// Cache stores byte blobs by key with an optional TTL.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources.
	Close() error
}

// GetOrCompute returns the cached value for key, or calls compute and
// caches its result. Cache failures are not fatal: a read error falls
// through to compute and a write error is ignored.
func GetOrCompute(ctx context.Context, c Cache, key string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, bool, error) {
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}
	data, err := compute()
	if err != nil {
		return nil, false, err
	}
	_ = c.Set(ctx, key, data, ttl)
	return data, false, nil
}
