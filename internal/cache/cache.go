// Package cache provides the time-boxed skew result cache.
package cache

import (
	"sync"
	"time"

	"optionskew/internal/models"
)

// Default cache timing.
const (
	// DefaultTTL is how long a computed result stays fresh.
	DefaultTTL = time.Hour
	// DefaultSweepInterval is how often expired entries are swept out
	// regardless of reads.
	DefaultSweepInterval = 5 * time.Minute
)

// Entry is one cached result with its expiry.
type Entry struct {
	Value     *models.SkewResult
	ExpiresAt time.Time
}

// Config holds cache configuration.
type Config struct {
	TTL           time.Duration
	SweepInterval time.Duration
	// Clock overrides time.Now, used by tests to advance time.
	Clock func() time.Time
}

// Cache is a TTL cache keyed by normalized symbol. Expired entries are
// evicted lazily on read and by a background sweep.
type Cache struct {
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
	done    chan struct{}
	mu      sync.RWMutex
	once    sync.Once
}

// New creates a cache with default TTL and sweep interval.
func New() *Cache {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a cache with custom configuration and starts the
// background sweep.
func NewWithConfig(cfg Config) *Cache {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	sweep := cfg.SweepInterval
	if sweep == 0 {
		sweep = DefaultSweepInterval
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	c := &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     now,
		done:    make(chan struct{}),
	}

	go c.sweepLoop(sweep)

	return c
}

// Get returns the cached result for a key. An entry past its expiry is
// treated as absent and evicted.
func (c *Cache) Get(key string) (*models.SkewResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.ExpiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a Set may have replaced it.
		if current, still := c.entries[key]; still && !c.now().Before(current.ExpiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.Value, true
}

// Set stores a result under the default TTL, overwriting any existing entry.
func (c *Cache) Set(key string, value *models.SkewResult) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a result with an explicit TTL.
func (c *Cache) SetWithTTL(key string, value *models.SkewResult, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry{
		Value:     value,
		ExpiresAt: c.now().Add(ttl),
	}
}

// Delete evicts a single key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear evicts all keys.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}

// Len returns the number of live (unexpired) entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	now := c.now()
	for _, entry := range c.entries {
		if now.Before(entry.ExpiresAt) {
			count++
		}
	}
	return count
}

// Entries returns a snapshot of the live entries, keyed by symbol.
func (c *Cache) Entries() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[string]Entry, len(c.entries))
	now := c.now()
	for key, entry := range c.entries {
		if now.Before(entry.ExpiresAt) {
			snapshot[key] = entry
		}
	}
	return snapshot
}

// Stop stops the background sweep. Safe to call more than once.
func (c *Cache) Stop() {
	c.once.Do(func() {
		close(c.done)
	})
}

// sweepLoop removes expired entries on a fixed interval, bounding growth
// from keys that are never read again.
func (c *Cache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(c.entries, key)
		}
	}
}
