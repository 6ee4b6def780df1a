// Package cache keeps pipeline results keyed on the resolved input files so
// repeated requests skip re-reading the filesystem.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache is a concurrency-safe memo of load results. Concurrent misses on the
// same key share one load.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	group   singleflight.Group
	ttl     time.Duration
	logger  *zap.Logger

	// gen changes on every Purge; a load started under an older generation
	// returns its value but does not store it.
	gen      uint64
	inflight map[string]int

	hits   int64
	misses int64
}

// Stats is a snapshot of cache activity
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// New creates a cache. ttl <= 0 keeps entries until Purge.
func New[V any](ttl time.Duration, logger *zap.Logger) *Cache[V] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache[V]{
		entries:  make(map[string]entry[V]),
		inflight: make(map[string]int),
		ttl:      ttl,
		logger:  logger,
	}
}

// GetOrLoad returns the cached value for key, calling load on a miss.
// Errors are returned to every waiter and never cached.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (V, error)) (V, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		gen := c.begin(key)
		defer c.end(key)

		// Detached so one caller's cancellation does not fail the others.
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return v, err
		}
		c.setIfCurrent(key, v, gen)
		return v, nil
	})

	select {
	case <-ctx.Done():
		var zero V
		return zero, false, ctx.Err()
	case res := <-ch:
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		v, _ := res.Val.(V)
		return v, false, res.Err
	}
}

// Get returns a fresh entry for key
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || (c.ttl > 0 && time.Since(e.storedAt) > c.ttl) {
		var zero V
		return zero, false
	}
	c.hits++
	return e.value, true
}

// Set stores value under key
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, storedAt: time.Now()}
	c.mu.Unlock()
}

func (c *Cache[V]) begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight[key]++
	return c.gen
}

func (c *Cache[V]) end(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[key]--; c.inflight[key] <= 0 {
		delete(c.inflight, key)
	}
}

// setIfCurrent stores value unless the cache was purged since gen was read
func (c *Cache[V]) setIfCurrent(key string, value V, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		c.logger.Debug("discarding load started before purge", zap.String("key", key))
		return
	}
	c.entries[key] = entry[V]{value: value, storedAt: time.Now()}
}

// Purge drops every entry. Loads still running keep their callers but their
// results are not stored, and later callers start a fresh load.
func (c *Cache[V]) Purge() int {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]entry[V])
	c.gen++
	running := make([]string, 0, len(c.inflight))
	for k := range c.inflight {
		running = append(running, k)
	}
	c.mu.Unlock()

	for _, k := range running {
		c.group.Forget(k)
	}

	if n > 0 {
		c.logger.Info("cache purged", zap.Int("entries", n))
	}
	return n
}

// Stats returns a snapshot of the cache counters
func (c *Cache[V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}
