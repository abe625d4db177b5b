// Package cachemanager holds the icon caches: the bounded LRU that fronts
// every lookup, and the optional second-tier stores (in-memory TTL or
// persistent) consulted behind it.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a second-tier store keyed by fully-qualified icon
// reference. Implementations must be safe for concurrent use. A zero ttl in
// Set means the store's default lifetime.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetMultiple(ctx context.Context, keys []K) (map[K]V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}

// Maintainer is implemented by second tiers that can report their size and
// drop expired entries eagerly (`iconkit cache`).
type Maintainer interface {
	Count(ctx context.Context) (int, error)
	PurgeExpired(ctx context.Context) (int64, error)
}
