// Package lazy provides single-slot memo cells for derived values.
//
// A Cache is bound to one owner and one recompute function. The value is
// computed on the first Get after construction or after Clear, and reused
// until the next Clear. A failed recompute stores nothing: the cell stays
// invalid and the next Get tries again.
//
// Caches are not synchronised. Each cache belongs to exactly one owner and
// is only touched from the goroutine that owns the model.
package lazy

import (
	"errors"
	"fmt"

	"github.com/zjrosen/airframe/internal/log"
)

// ErrRecomputeFailed wraps every error returned by a recompute function.
var ErrRecomputeFailed = errors.New("recompute failed")

// Cache memoizes a value derived from its owner.
type Cache[O, V any] struct {
	owner     O
	recompute func(O) (V, error)
	name      string
	value     V
	valid     bool
	computing bool
	computes  int
	// epoch counts Clears, so a recompute that cleared its own cache does
	// not store a stale value.
	epoch uint64
}

// New binds a cache to owner and recompute. Nothing is computed yet.
func New[O, V any](owner O, recompute func(O) (V, error)) *Cache[O, V] {
	return &Cache[O, V]{owner: owner, recompute: recompute}
}

// Named is like New but labels the cache for log output.
func Named[O, V any](name string, owner O, recompute func(O) (V, error)) *Cache[O, V] {
	c := New(owner, recompute)
	c.name = name
	return c
}

// Get returns the cached value, computing it first when the cache is invalid.
// The recompute function runs at most once per invalidation cycle.
func (c *Cache[O, V]) Get() (V, error) {
	if c.valid {
		return c.value, nil
	}
	if c.computing {
		var zero V
		return zero, fmt.Errorf("%w: %s: recursive access during recompute", ErrRecomputeFailed, c.label())
	}

	c.computing = true
	defer func() { c.computing = false }()
	epoch := c.epoch
	value, err := c.recompute(c.owner)
	c.computes++

	if err != nil {
		log.Debug(log.CatCache, "recompute failed", "cache", c.label(), "error", err)
		var zero V
		return zero, fmt.Errorf("%w: %s: %w", ErrRecomputeFailed, c.label(), err)
	}

	if c.epoch != epoch {
		log.Debug(log.CatCache, "cleared during recompute, not stored", "cache", c.label())
		return value, nil
	}
	c.value = value
	c.valid = true
	return c.value, nil
}

// Clear discards the stored value and marks the cache invalid. Idempotent.
func (c *Cache[O, V]) Clear() {
	var zero V
	c.value = zero
	c.valid = false
	c.epoch++
}

// Invalidate is an alias for Clear.
func (c *Cache[O, V]) Invalidate() {
	c.Clear()
}

// Valid reports whether Get would return without recomputing.
func (c *Cache[O, V]) Valid() bool {
	return c.valid
}

// Computes returns how many times the recompute function has run.
func (c *Cache[O, V]) Computes() int {
	return c.computes
}

func (c *Cache[O, V]) label() string {
	if c.name != "" {
		return c.name
	}
	return "cache"
}
