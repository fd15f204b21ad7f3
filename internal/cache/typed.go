package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

// loadTimeout bounds a shared load in GetOrSet.
const loadTimeout = 30 * time.Second

// TypedCache stores values of one type as JSON in a Cache. Concurrent
// misses on the same key share a single load.
type TypedCache[T any] struct {
	cache Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewTypedCache wraps c; ttl applies to every Set.
func NewTypedCache[T any](c Cache, ttl time.Duration) *TypedCache[T] {
	return &TypedCache[T]{cache: c, ttl: ttl}
}

// Get reports a miss for absent keys, backend errors and undecodable values alike.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var v T
	data, err := c.cache.Get(ctx, key)
	if err != nil || json.Unmarshal(data, &v) != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// Set encodes v and stores it under key.
func (c *TypedCache[T]) Set(ctx context.Context, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return c.cache.Set(ctx, key, data, c.ttl)
}

// Delete removes key.
func (c *TypedCache[T]) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, key)
}

// GetOrSet returns the cached value for key or loads, stores and returns it.
// A load error is returned and nothing is stored. A failed store is ignored
// since the loaded value is still good.
//
// Concurrent misses share one load. The load runs detached from every
// caller's cancellation, bounded by loadTimeout, so one caller going away
// does not fail the others; that caller alone gets ctx.Err().
func (c *TypedCache[T]) GetOrSet(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		_ = c.Set(loadCtx, key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		v, _ := res.Val.(T)
		return v, res.Err
	}
}
