package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool { return !now.Before(e.expiresAt) }

// MemoryCacheOptions configures the memory cache.
type MemoryCacheOptions struct {
	DefaultTTL time.Duration
	// MaxSize bounds the entry count; 0 means unbounded.
	MaxSize int
	// CleanupInterval of 0 disables the background sweep; expired entries
	// are then dropped lazily on read.
	CleanupInterval time.Duration
}

// MemoryCache keeps entries in a map guarded by a mutex. When full it
// evicts the entry that would expire first.
type MemoryCache struct {
	opts MemoryCacheOptions
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
	closed  bool
	stop    chan struct{}

	hits, misses, sets atomic.Int64
}

// NewMemoryCache creates a memory cache and starts its sweeper if configured.
func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	c := &MemoryCache{
		opts:    opts,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
		stop:    make(chan struct{}),
	}
	if opts.CleanupInterval > 0 {
		go c.sweepEvery(opts.CleanupInterval)
	}
	return c
}

// lookup returns the live entry for key, dropping it if expired.
// Callers hold c.mu.
func (c *MemoryCache) lookup(key string) (memoryEntry, bool) {
	e, ok := c.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

// Get returns a copy of the stored value.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrCacheClosed
	}

	e, ok := c.lookup(key)
	if !ok {
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}
	c.hits.Add(1)
	return append([]byte(nil), e.value...), nil
}

// Set stores a copy of value. A zero ttl uses the default TTL.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.opts.DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}

	if _, exists := c.entries[key]; !exists && c.opts.MaxSize > 0 && len(c.entries) >= c.opts.MaxSize {
		c.makeRoom()
	}
	c.entries[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: c.now().Add(ttl),
	}
	c.sets.Add(1)
	return nil
}

// makeRoom drops expired entries, or the soonest-expiring one if none have
// expired. Callers hold c.mu.
func (c *MemoryCache) makeRoom() {
	if c.dropExpired() > 0 {
		return
	}
	var victim string
	var soonest time.Time
	for k, e := range c.entries {
		if victim == "" || e.expiresAt.Before(soonest) {
			victim, soonest = k, e.expiresAt
		}
	}
	delete(c.entries, victim)
}

// dropExpired removes expired entries and reports how many went.
// Callers hold c.mu.
func (c *MemoryCache) dropExpired() int {
	now := c.now()
	n := 0
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Delete removes key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	delete(c.entries, key)
	return nil
}

// DeleteByPrefix removes all keys starting with prefix.
func (c *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	clear(c.entries)
	return nil
}

// Has reports whether key holds a live entry.
func (c *MemoryCache) Has(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrCacheClosed
	}
	_, ok := c.lookup(key)
	return ok, nil
}

// Close stops the sweeper. Later calls fail with ErrCacheClosed.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.stop)
	}
	return nil
}

// Stats returns current cache statistics.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	items := len(c.entries)
	c.mu.Unlock()

	hits, misses := c.hits.Load(), c.misses.Load()
	return Stats{
		Backend: "memory",
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Items:   items,
		HitRate: hitRate(hits, misses),
	}
}

// ResetStats zeroes the counters.
func (c *MemoryCache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.sets.Store(0)
}

func (c *MemoryCache) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.dropExpired()
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

var (
	_ Cache         = (*MemoryCache)(nil)
	_ StatsProvider = (*MemoryCache)(nil)
)
