package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStorage is a process-local backend on ttlcache. Entries live for
// the configured retention, or forever when it is zero.
type MemoryStorage struct {
	cache *ttlcache.Cache[string, []byte]
}

func NewMemoryStorage(retention time.Duration) *MemoryStorage {
	ttl := retentionOrZero(retention)
	if ttl == 0 {
		ttl = ttlcache.NoTTL
	}

	cache := ttlcache.New(
		ttlcache.WithTTL[string, []byte](ttl),
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go cache.Start()

	return &MemoryStorage{cache: cache}
}

func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	item := m.cache.Get(key)
	if item == nil {
		return nil, fmt.Errorf("key %s: %w", key, ErrNotFound)
	}
	out := make([]byte, len(item.Value()))
	copy(out, item.Value())
	return out, nil
}

func (m *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	m.cache.Set(key, stored, ttlcache.DefaultTTL)
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

func (m *MemoryStorage) Len() int {
	return m.cache.Len()
}

// Close stops the cleanup goroutine.
func (m *MemoryStorage) Close() error {
	m.cache.Stop()
	return nil
}
