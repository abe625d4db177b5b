package cachemanager

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/iconkit/internal/log"
)

// DefaultExpiration matches the 24h icon cache timeout used when the
// configuration does not set one.
const DefaultExpiration = 24 * time.Hour

// DefaultCleanupInterval is how often go-cache sweeps expired entries.
const DefaultCleanupInterval = 30 * time.Minute

// InMemoryCacheManager is the go-cache second tier. Values are stored as-is,
// so it only suits a single process.
type InMemoryCacheManager[K ~string, V any] struct {
	name  string
	cache *gocache.Cache
}

var (
	_ CacheManager[string, int] = (*InMemoryCacheManager[string, int])(nil)
	_ Maintainer                = (*InMemoryCacheManager[string, int])(nil)
)

// NewInMemoryCacheManager creates a go-cache backed second tier. name labels
// log lines ("icons").
func NewInMemoryCacheManager[K ~string, V any](name string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[K, V] {
	c := gocache.New(defaultExpiration, cleanupInterval)
	c.OnEvicted(func(key string, _ any) {
		log.Debug(log.CatCache, "Second tier entry removed", "cache", name, "key", key)
	})
	return &InMemoryCacheManager[K, V]{name: name, cache: c}
}

func (c *InMemoryCacheManager[K, V]) lookup(key K) (V, bool) {
	var zero V
	raw, found := c.cache.Get(string(key))
	if !found {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		log.Error(log.CatCache, "Second tier holds unexpected type", "cache", c.name, "key", key)
		return zero, false
	}
	return v, true
}

// Get returns the live value for key.
func (c *InMemoryCacheManager[K, V]) Get(_ context.Context, key K) (V, bool) {
	v, ok := c.lookup(key)
	if ok {
		log.Debug(log.CatCache, "Second tier hit", "cache", c.name, "key", key)
	}
	return v, ok
}

// GetMultiple returns every key present. ok is false when none were found.
func (c *InMemoryCacheManager[K, V]) GetMultiple(_ context.Context, keys []K) (map[K]V, bool) {
	found := make(map[K]V, len(keys))
	for _, key := range keys {
		if v, ok := c.lookup(key); ok {
			found[key] = v
		}
	}
	if len(found) == 0 {
		return nil, false
	}
	if missing := len(keys) - len(found); missing > 0 {
		log.Debug(log.CatCache, "Partial second tier hit", "cache", c.name, "found", len(found), "missing", missing)
	}
	return found, true
}

// GetWithRefresh returns the value for key and restarts its lifetime at ttl.
func (c *InMemoryCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	v, ok := c.Get(ctx, key)
	if ok {
		c.Set(ctx, key, v, ttl)
	}
	return v, ok
}

// Set stores value for ttl; zero uses the default expiration and a negative
// ttl never expires.
func (c *InMemoryCacheManager[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	switch {
	case ttl == 0:
		ttl = gocache.DefaultExpiration
	case ttl < 0:
		ttl = gocache.NoExpiration
	}
	c.cache.Set(string(key), value, ttl)
}

// Delete removes keys.
func (c *InMemoryCacheManager[K, V]) Delete(_ context.Context, keys ...K) error {
	for _, key := range keys {
		c.cache.Delete(string(key))
	}
	return nil
}

// Flush removes every item.
func (c *InMemoryCacheManager[K, V]) Flush(context.Context) error {
	c.cache.Flush()
	return nil
}

// Count returns the number of stored items, including expired ones not yet
// swept.
func (c *InMemoryCacheManager[K, V]) Count(context.Context) (int, error) {
	return c.cache.ItemCount(), nil
}

// PurgeExpired sweeps expired items now and reports how many went.
func (c *InMemoryCacheManager[K, V]) PurgeExpired(context.Context) (int64, error) {
	before := c.cache.ItemCount()
	c.cache.DeleteExpired()
	return int64(before - c.cache.ItemCount()), nil
}
