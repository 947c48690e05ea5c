package cache

import (
	"context"
	"time"
)

// Store is the flat, string-keyed storage boundary beneath the tiered cache.
// Implementations must honour per-key TTLs; expiry enforcement belongs to the
// store, not to callers.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}
