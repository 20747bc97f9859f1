// Package cache provides a small key/value cache with JSON-encoded values.
// Two stores exist: RedisStore (CACHE_DRIVER=redis) and MemoryStore, which is
// the default and the fallback when Redis is unreachable.
//
//	var p models.Product
//	err := cache.Remember(ctx, store, "product:7", 10*time.Minute, &p, func() error {
//	    return db.First(&p, 7).Error
//	})
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Store is implemented by every cache backend.
type Store interface {
	// Get unmarshals the value under key into dest and reports a hit.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Driver() string
}

// Open returns the store selected by CACHE_DRIVER. A Redis connection
// failure falls back to memory with a warning.
func Open(ctx context.Context) Store {
	if config.CacheDriver() == "redis" {
		client, err := Connect(ctx)
		if err == nil {
			return NewRedisStore(client)
		}
		logger.Warn("cache: redis unavailable, using memory store", "error", err)
	}
	return NewMemoryStore()
}

// Remember returns the cached value under key, or runs load to fill dest and
// caches the result for ttl. Cache errors never fail the call.
func Remember(ctx context.Context, s Store, key string, ttl time.Duration, dest any, load func() error) error {
	if hit, err := s.Get(ctx, key, dest); err == nil && hit {
		metrics.CacheHits.WithLabelValues(s.Driver()).Inc()
		return nil
	}
	metrics.CacheMisses.WithLabelValues(s.Driver()).Inc()

	if err := load(); err != nil {
		return err
	}
	if err := s.Set(ctx, key, dest, ttl); err != nil {
		logger.WithCtx(ctx).Warn("cache: set failed", "key", key, "error", err)
	}
	return nil
}

// Forget deletes keys, logging instead of failing.
func Forget(ctx context.Context, s Store, keys ...string) {
	if err := s.Del(ctx, keys...); err != nil {
		logger.WithCtx(ctx).Warn("cache: delete failed", "keys", keys, "error", err)
	}
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryStore) Driver() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(e.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	e := memoryEntry{data: data}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	m.mu.Unlock()
	return nil
}
