// Copyright (c) 2026 BVK Chaitanya

// Package cache implements a bounded key/value cache with per-class TTLs and
// least-recently-used eviction. It is protocol agnostic; the scanner uses one
// instance for listing snapshots, sale-history aggregates and account data.
package cache

import (
	"container/list"
	"fmt"
	"path"
	"sync"
	"time"
)

// Class selects the TTL applied to an entry at Put time.
type Class string

const (
	Listings    Class = "listings"
	Snapshots   Class = "snapshots"
	SaleHistory Class = "sale-history"
	Account     Class = "account"
)

type Options struct {
	// Capacity bounds the number of entries. Inserting beyond capacity
	// evicts the least-recently-used entry synchronously; there is no
	// background sweeper.
	Capacity int

	// TTLMap overrides the default per-class TTLs.
	TTLMap map[Class]time.Duration

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

func (v *Options) setDefaults() {
	if v.Capacity == 0 {
		v.Capacity = 10000
	}
	if v.TTLMap == nil {
		v.TTLMap = map[Class]time.Duration{}
	}
	defaults := map[Class]time.Duration{
		Listings:    30 * time.Second,
		Snapshots:   60 * time.Second,
		SaleHistory: 300 * time.Second,
		Account:     600 * time.Second,
	}
	for class, ttl := range defaults {
		if _, ok := v.TTLMap[class]; !ok {
			v.TTLMap[class] = ttl
		}
	}
	if v.Clock == nil {
		v.Clock = time.Now
	}
}

func (v *Options) Check() error {
	if v.Capacity < 0 {
		return fmt.Errorf("capacity cannot be negative")
	}
	for class, ttl := range v.TTLMap {
		if ttl <= 0 {
			return fmt.Errorf("ttl for class %q must be positive", class)
		}
	}
	return nil
}

// Stats holds cumulative counters since the cache was created.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Expired   int64

	Size int
}

type entry struct {
	key    string
	value  any
	expiry time.Time
}

// Cache is safe for concurrent use. The map and the LRU bookkeeping are
// updated under one lock so a reader never observes a torn eviction or
// insert.
type Cache struct {
	opts Options

	mu       sync.Mutex
	entryMap map[string]*list.Element
	lru      *list.List // front is most recently used

	hits, misses, evictions, expired int64
}

func New(opts *Options) (*Cache, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	c := &Cache{
		opts:     *opts,
		entryMap: make(map[string]*list.Element),
		lru:      list.New(),
	}
	return c, nil
}

// Get returns the cached value for key. Expired entries are removed and
// reported as misses; a value past its expiry is never returned.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entryMap[key]
	if !ok {
		c.misses++
		return nil, false
	}
	e := elem.Value.(*entry)
	if !c.opts.Clock().Before(e.expiry) {
		c.removeLocked(elem)
		c.expired++
		c.misses++
		return nil, false
	}
	c.lru.MoveToFront(elem)
	c.hits++
	return e.value, true
}

// Put inserts or replaces the value for key with the TTL of the given class.
// Unknown classes get the snapshot TTL.
func (c *Cache) Put(key string, value any, class Class) {
	ttl, ok := c.opts.TTLMap[class]
	if !ok {
		ttl = c.opts.TTLMap[Snapshots]
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiry := c.opts.Clock().Add(ttl)
	if elem, ok := c.entryMap[key]; ok {
		e := elem.Value.(*entry)
		e.value, e.expiry = value, expiry
		c.lru.MoveToFront(elem)
		return
	}

	for c.lru.Len() >= c.opts.Capacity {
		c.removeLocked(c.lru.Back())
		c.evictions++
	}
	c.entryMap[key] = c.lru.PushFront(&entry{key: key, value: value, expiry: expiry})
}

// Invalidate removes every entry whose key matches the path.Match pattern and
// returns the number of removed entries.
func (c *Cache) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var victims []*list.Element
	for key, elem := range c.entryMap {
		if ok, err := path.Match(pattern, key); err == nil && ok {
			victims = append(victims, elem)
		}
	}
	for _, elem := range victims {
		c.removeLocked(elem)
	}
	return len(victims)
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Expired:   c.expired,
		Size:      c.lru.Len(),
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *Cache) removeLocked(elem *list.Element) {
	e := elem.Value.(*entry)
	c.lru.Remove(elem)
	delete(c.entryMap, e.key)
}
