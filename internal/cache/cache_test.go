package cache

import (
	"sync"
	"testing"
	"time"

	"optionskew/internal/models"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testCache(t *testing.T, clock *fakeClock) *Cache {
	t.Helper()
	c := NewWithConfig(Config{
		TTL:           time.Hour,
		SweepInterval: time.Hour,
		Clock:         clock.Now,
	})
	t.Cleanup(c.Stop)
	return c
}

func result(symbol string, skew float64) *models.SkewResult {
	return &models.SkewResult{Symbol: symbol, Skew: skew}
}

func TestCacheRoundTrip(t *testing.T) {
	clock := newFakeClock()
	c := testCache(t, clock)

	stored := result("SPY", 1.5)
	c.Set("SPY", stored)

	got, ok := c.Get("SPY")
	if !ok {
		t.Fatal("expected hit immediately after set")
	}
	if got != stored {
		t.Error("cached value is not the stored value")
	}

	if _, ok := c.Get("QQQ"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestCacheExpiry(t *testing.T) {
	clock := newFakeClock()
	c := testCache(t, clock)

	c.Set("SPY", result("SPY", 1.5))

	clock.Advance(59 * time.Minute)
	if _, ok := c.Get("SPY"); !ok {
		t.Fatal("entry expired before its TTL")
	}

	clock.Advance(2 * time.Minute)
	if _, ok := c.Get("SPY"); ok {
		t.Fatal("entry survived past its TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache after expiry, got %d entries", c.Len())
	}
}

func TestCacheSetRefreshesTTL(t *testing.T) {
	clock := newFakeClock()
	c := testCache(t, clock)

	c.Set("SPY", result("SPY", 1.2))
	clock.Advance(50 * time.Minute)
	c.Set("SPY", result("SPY", 1.6))
	clock.Advance(50 * time.Minute)

	got, ok := c.Get("SPY")
	if !ok {
		t.Fatal("overwrite should have restarted the TTL")
	}
	if got.Skew != 1.6 {
		t.Errorf("expected refreshed value 1.6, got %v", got.Skew)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	clock := newFakeClock()
	c := testCache(t, clock)

	c.Set("SPY", result("SPY", 1.5))
	c.Set("QQQ", result("QQQ", 1.1))

	c.Delete("SPY")
	if _, ok := c.Get("SPY"); ok {
		t.Error("deleted entry still readable")
	}
	if _, ok := c.Get("QQQ"); !ok {
		t.Error("delete evicted the wrong key")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after clear, got %d entries", c.Len())
	}
}

func TestCacheEntriesSnapshot(t *testing.T) {
	clock := newFakeClock()
	c := testCache(t, clock)

	c.Set("SPY", result("SPY", 1.5))
	clock.Advance(30 * time.Minute)
	c.Set("QQQ", result("QQQ", 1.1))
	clock.Advance(45 * time.Minute)

	// SPY is 75 minutes old and expired; QQQ is 45 minutes old and live.
	entries := c.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 live entry, got %d", len(entries))
	}
	if _, ok := entries["QQQ"]; !ok {
		t.Error("expected QQQ in snapshot")
	}
}

func TestCacheSweep(t *testing.T) {
	clock := newFakeClock()
	c := testCache(t, clock)

	c.Set("SPY", result("SPY", 1.5))
	clock.Advance(2 * time.Hour)

	c.sweep()

	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.entries) != 0 {
		t.Errorf("sweep left %d expired entries", len(c.entries))
	}
}
