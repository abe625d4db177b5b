package cachemanager

import (
	"context"
	"sync/atomic"
	"time"
)

// LoadFunc produces the value for input on a cache miss.
type LoadFunc[I, V any] func(ctx context.Context, input I) (V, error)

// ReadThroughOption configures a ReadThroughCache.
type ReadThroughOption func(*readThroughOptions)

type readThroughOptions struct {
	skip    bool
	sliding bool
}

// SkipCache bypasses the backing store entirely.
func SkipCache() ReadThroughOption {
	return func(o *readThroughOptions) { o.skip = true }
}

// Sliding makes every hit push the entry's expiry out by ttl.
func Sliding() ReadThroughOption {
	return func(o *readThroughOptions) { o.sliding = true }
}

// TierStats counts second-tier lookups.
type TierStats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// ReadThroughCache consults a CacheManager before calling its LoadFunc and
// stores successful results. Errors are never cached, so a not-found lookup
// is retried against the source on the next call. A nil backing store
// disables caching.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache   CacheManager[K, V]
	load    LoadFunc[I, V]
	sliding bool

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewReadThroughCache wraps load with cache.
func NewReadThroughCache[K comparable, V any, I any](
	cache CacheManager[K, V],
	load LoadFunc[I, V],
	opts ...ReadThroughOption,
) *ReadThroughCache[K, V, I] {
	var o readThroughOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.skip {
		cache = nil
	}
	return &ReadThroughCache[K, V, I]{cache: cache, load: load, sliding: o.sliding}
}

// Get returns the cached value for key, or loads it from input and caches
// it for ttl.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if r.cache == nil {
		return r.load(ctx, input)
	}

	var (
		value V
		ok    bool
	)
	if r.sliding {
		value, ok = r.cache.GetWithRefresh(ctx, key, ttl)
	} else {
		value, ok = r.cache.Get(ctx, key)
	}
	if ok {
		r.hits.Add(1)
		return value, nil
	}
	r.misses.Add(1)

	value, err := r.load(ctx, input)
	if err != nil {
		return value, err
	}
	r.cache.Set(ctx, key, value, ttl)
	return value, nil
}

// Delete drops keys from the backing cache.
func (r *ReadThroughCache[K, V, I]) Delete(ctx context.Context, keys ...K) error {
	if r.cache == nil || len(keys) == 0 {
		return nil
	}
	return r.cache.Delete(ctx, keys...)
}

// Flush empties the backing cache.
func (r *ReadThroughCache[K, V, I]) Flush(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Flush(ctx)
}

// Enabled reports whether a backing cache is consulted.
func (r *ReadThroughCache[K, V, I]) Enabled() bool {
	return r.cache != nil
}

// Stats returns hit and miss counts since construction.
func (r *ReadThroughCache[K, V, I]) Stats() TierStats {
	return TierStats{Hits: r.hits.Load(), Misses: r.misses.Load()}
}
