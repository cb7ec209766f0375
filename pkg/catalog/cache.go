package catalog

import (
	"context"
	"sync"
	"time"
)

// RecordCache holds recently resolved registry records so the catalog can
// answer validity questions during a registry outage. Entries expire after
// the TTL supplied on Set.
type RecordCache interface {
	Get(ctx context.Context, id string) (*Record, bool)
	Set(ctx context.Context, rec *Record, ttl time.Duration)
	Delete(ctx context.Context, id string)
	Close() error
}

// DefaultCacheSize caps the in-memory record cache.
const DefaultCacheSize = 1000

type memCacheItem struct {
	rec       *Record
	expiresAt time.Time
}

// memRecordCache is the default in-memory RecordCache: TTL expiry with LRU
// eviction once the size cap is reached.
type memRecordCache struct {
	mu      sync.Mutex
	items   map[string]memCacheItem
	order   []string // least recently used first
	maxSize int
	stop    chan struct{}
	done    chan struct{}
	closed  bool
}

// NewMemoryRecordCache creates an in-memory record cache with the default
// size cap and a background sweep for expired entries.
func NewMemoryRecordCache() RecordCache {
	return NewMemoryRecordCacheWithSize(DefaultCacheSize)
}

// NewMemoryRecordCacheWithSize creates an in-memory record cache capped at
// maxSize entries.
func NewMemoryRecordCacheWithSize(maxSize int) RecordCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	c := &memRecordCache{
		items:   make(map[string]memCacheItem),
		maxSize: maxSize,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.sweep()
	return c
}

func (c *memRecordCache) Get(ctx context.Context, id string) (*Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[id]
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		delete(c.items, id)
		c.unlink(id)
		return nil, false
	}
	c.touch(id)
	return item.rec, true
}

func (c *memRecordCache) Set(ctx context.Context, rec *Record, ttl time.Duration) {
	if rec == nil || ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[rec.ID]; !exists && len(c.items) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
	}
	c.items[rec.ID] = memCacheItem{rec: rec, expiresAt: time.Now().Add(ttl)}
	c.touch(rec.ID)
}

func (c *memRecordCache) Delete(ctx context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, id)
	c.unlink(id)
}

func (c *memRecordCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}

func (c *memRecordCache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *memRecordCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for id, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, id)
			c.unlink(id)
		}
	}
}

// touch moves id to the most-recently-used end of the order queue.
func (c *memRecordCache) touch(id string) {
	c.unlink(id)
	c.order = append(c.order, id)
}

func (c *memRecordCache) unlink(id string) {
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// noOpRecordCache disables last-known-good reads entirely: outages fail
// closed. Used when no cache is configured.
type noOpRecordCache struct{}

// NewNoOpRecordCache creates a cache that never stores anything.
func NewNoOpRecordCache() RecordCache {
	return noOpRecordCache{}
}

func (noOpRecordCache) Get(ctx context.Context, id string) (*Record, bool)       { return nil, false }
func (noOpRecordCache) Set(ctx context.Context, rec *Record, ttl time.Duration) {}
func (noOpRecordCache) Delete(ctx context.Context, id string)                   {}
func (noOpRecordCache) Close() error                                            { return nil }
