package cachemanager

import (
	"context"
	"sync/atomic"
	"time"
)

// ReadThroughCache computes values on a miss and stores them under the key
// derived from the input.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache           CacheManager[K, V]
	key             func(input I) K
	fn              func(ctx context.Context, input I) (V, error)
	ttl             time.Duration
	shouldSkipCache bool

	hits   atomic.Int64
	misses atomic.Int64
}

func NewReadThroughCache[K comparable, V any, I any](
	cache CacheManager[K, V],
	key func(input I) K,
	fn func(ctx context.Context, input I) (V, error),
	ttl time.Duration,
	shouldSkipCache bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		cache:           cache,
		key:             key,
		fn:              fn,
		ttl:             ttl,
		shouldSkipCache: shouldSkipCache,
	}
}

// Get returns the cached value for input, computing and storing it on a miss.
// Errors are never cached.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, input I) (V, error) {
	return r.get(ctx, input, r.cache.Get)
}

// GetWithRefresh is Get, but a hit also extends the entry's ttl.
func (r *ReadThroughCache[K, V, I]) GetWithRefresh(ctx context.Context, input I) (V, error) {
	return r.get(ctx, input, func(ctx context.Context, key K) (V, bool) {
		return r.cache.GetWithRefresh(ctx, key, r.ttl)
	})
}

func (r *ReadThroughCache[K, V, I]) get(ctx context.Context, input I, lookup func(context.Context, K) (V, bool)) (V, error) {
	if r.shouldSkipCache {
		return r.fn(ctx, input)
	}

	key := r.key(input)
	if value, ok := lookup(ctx, key); ok {
		r.hits.Add(1)
		return value, nil
	}
	r.misses.Add(1)

	value, err := r.fn(ctx, input)
	if err != nil {
		return value, err
	}

	r.cache.Set(ctx, key, value, r.ttl)

	return value, nil
}

// Stats returns the hit and miss counts. Skipped lookups count as neither.
func (r *ReadThroughCache[K, V, I]) Stats() (hits, misses int64) {
	return r.hits.Load(), r.misses.Load()
}
