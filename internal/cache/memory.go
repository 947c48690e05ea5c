package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore implements Store in-process on top of ttlcache. It suits
// single-instance deployments and tests; entries do not survive restarts.
type MemoryStore struct {
	mu    sync.Mutex
	items *ttlcache.Cache[string, []byte]
}

// NewMemoryStore constructs a memory-backed Store and starts its expiry loop.
func NewMemoryStore() *MemoryStore {
	items := ttlcache.New[string, []byte](
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go items.Start()

	return &MemoryStore{items: items}
}

// Close stops the background expiry loop.
func (s *MemoryStore) Close() {
	s.items.Stop()
}

// Get retrieves the value associated with a key.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	item := s.items.Get(key)
	if item == nil || item.IsExpired() {
		return nil, false, nil
	}
	return item.Value(), true, nil
}

// Set stores a value with the requested TTL.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	s.items.Set(key, value, ttl)
	return nil
}

// Delete removes keys, ignoring missing ones.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		s.items.Delete(key)
	}
	return nil
}

// IncrementWithTTL increments a counter under the key, creating it with the
// supplied window when absent or expired.
func (s *MemoryStore) IncrementWithTTL(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.items.Get(key)
	if item == nil || item.IsExpired() {
		s.items.Set(key, []byte("1"), window)
		return 1, window, nil
	}

	count, _ := strconv.ParseInt(string(item.Value()), 10, 64)
	count++

	remaining := time.Until(item.ExpiresAt())
	if remaining <= 0 {
		remaining = window
	}
	s.items.Set(key, []byte(strconv.FormatInt(count, 10)), remaining)

	return count, remaining, nil
}
