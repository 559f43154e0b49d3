// Copyright (c) 2026 BVK Chaitanya

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
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

func newTestCache(t *testing.T, capacity int) (*Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c, err := New(&Options{Capacity: capacity, Clock: clock.Now})
	if err != nil {
		t.Fatal(err)
	}
	return c, clock
}

func TestLRUEviction(t *testing.T) {
	c, _ := newTestCache(t, 2)

	c.Put("a", 1, Listings)
	c.Put("b", 2, Listings)
	c.Put("c", 3, Listings)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("a must have been evicted as the least-recently-used entry")
	}
	if v, ok := c.Get("b"); !ok || v.(int) != 2 {
		t.Fatalf("b must still be cached, got %v %v", v, ok)
	}
	if v, ok := c.Get("c"); !ok || v.(int) != 3 {
		t.Fatalf("c must still be cached, got %v %v", v, ok)
	}

	stats := c.Stats()
	if stats.Evictions != 1 {
		t.Fatalf("evictions = %d, want 1", stats.Evictions)
	}
}

func TestLRUTouchOnGet(t *testing.T) {
	c, _ := newTestCache(t, 2)

	c.Put("a", 1, Listings)
	c.Put("b", 2, Listings)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a must be cached")
	}

	// a was used more recently than b, so inserting c must evict b.
	c.Put("c", 3, Listings)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a must survive the eviction")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatalf("b must have been evicted")
	}
}

func TestExpiry(t *testing.T) {
	c, clock := newTestCache(t, 10)

	c.Put("listing", "v", Listings)
	c.Put("history", "v", SaleHistory)

	clock.Advance(31 * time.Second)
	if _, ok := c.Get("listing"); ok {
		t.Fatalf("listing entry must expire after 30s")
	}
	if _, ok := c.Get("history"); !ok {
		t.Fatalf("sale-history entry must live for 300s")
	}

	clock.Advance(300 * time.Second)
	if _, ok := c.Get("history"); ok {
		t.Fatalf("sale-history entry must expire after 300s")
	}

	stats := c.Stats()
	if stats.Expired != 2 {
		t.Fatalf("expired = %d, want 2", stats.Expired)
	}
}

func TestExpiryBoundary(t *testing.T) {
	c, clock := newTestCache(t, 10)
	c.Put("k", "v", Listings)

	// Exactly at the expiry instant the entry is already stale.
	clock.Advance(30 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("entry at now == expiry must not be returned")
	}
}

func TestPutReplaces(t *testing.T) {
	c, clock := newTestCache(t, 2)
	c.Put("k", 1, Listings)
	clock.Advance(20 * time.Second)
	c.Put("k", 2, Listings)
	clock.Advance(20 * time.Second)

	// The second Put refreshed the expiry, so the entry is still live.
	v, ok := c.Get("k")
	if !ok || v.(int) != 2 {
		t.Fatalf("got %v %v, want refreshed value 2", v, ok)
	}
	if n := c.Len(); n != 1 {
		t.Fatalf("len = %d, want 1", n)
	}
}

func TestInvalidate(t *testing.T) {
	c, _ := newTestCache(t, 10)
	c.Put("/listings/rust/tier1", "v", Listings)
	c.Put("/listings/rust/tier2", "v", Listings)
	c.Put("/history/rust/ak", "v", SaleHistory)

	if n := c.Invalidate("/listings/rust/*"); n != 2 {
		t.Fatalf("invalidated %d entries, want 2", n)
	}
	if _, ok := c.Get("/history/rust/ak"); !ok {
		t.Fatalf("history entry must survive the listings invalidation")
	}
}

func TestStatsCounters(t *testing.T) {
	c, _ := newTestCache(t, 10)
	c.Put("k", "v", Account)

	c.Get("k")
	c.Get("k")
	c.Get("missing")

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Fatalf("hits=%d misses=%d, want 2 and 1", stats.Hits, stats.Misses)
	}
	if stats.Size != 1 {
		t.Fatalf("size = %d, want 1", stats.Size)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(t, 100)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				key := fmt.Sprintf("/k/%d", j%150)
				c.Put(key, j, Listings)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if n := c.Len(); n > 100 {
		t.Fatalf("len = %d exceeds capacity 100", n)
	}
}
