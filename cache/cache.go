// Package cache keeps aggregated timelines in memory for a fixed time-to-live.
//
// Expiry is lazy: an entry is only considered stale when it is read, and it is replaced
// by the next Set for the same key. Nothing sweeps the map, which is fine because keys are
// bounded by the number of sources plus one.
package cache

import (
	"blogroll/metrics"
	"blogroll/models"
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	// AllKey caches the unfiltered timeline
	AllKey     = "all"
	DefaultTTL = 15 * time.Minute
)

// ErrEmptyLoad is returned by Fill when the load produced no items
var ErrEmptyLoad = errors.New("load produced no items")

type entry struct {
	items     []models.AggregatedItem
	expiresAt time.Time
}

// Loader produces a fresh value for a key on a miss
type Loader func(ctx context.Context) []models.AggregatedItem

type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group
}

type Option func(*Cache)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the items stored for key, or false when there is no entry or it has expired
func (c *Cache) Get(key string) ([]models.AggregatedItem, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.items, true
}

// Set stores items under key until now + TTL. Callers must not modify items afterwards.
func (c *Cache) Set(key string, items []models.AggregatedItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		items:     items,
		expiresAt: c.now().Add(c.ttl),
	}
	metrics.CachedItems.WithLabelValues(key).Set(float64(len(items)))
}

// GetOrLoad serves key from the cache, or runs load on a miss. Concurrent misses for the
// same key share a single load and all receive its result.
func (c *Cache) GetOrLoad(ctx context.Context, key string, load Loader) []models.AggregatedItem {
	if items, ok := c.Get(key); ok {
		metrics.CacheRequests.WithLabelValues("hit").Inc()
		return items
	}

	// The load outlives any single caller, so it must not die with the first caller's request
	loadCtx := context.WithoutCancel(ctx)

	v, _, shared := c.group.Do(key, func() (interface{}, error) {
		// Another caller may have filled the key while we waited to enter
		if items, ok := c.Get(key); ok {
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			return items, nil
		}

		metrics.CacheRequests.WithLabelValues("miss").Inc()
		log.WithFields(log.Fields{
			"key": key,
		}).Info("Cache miss, refreshing")

		items := load(loadCtx)
		c.Set(key, items)
		return items, nil
	})

	if shared {
		metrics.CacheRequests.WithLabelValues("shared").Inc()
	}

	// A Fill that came back empty still hands its slice to the callers that joined it
	items, _ := v.([]models.AggregatedItem)
	return items
}

// Fill loads key unless it already holds a fresh entry. It shares the in-flight load with
// GetOrLoad, so a fill never runs concurrently with a request-driven load of the same key.
// Only a non-empty result is stored; an empty one is returned with ErrEmptyLoad.
func (c *Cache) Fill(ctx context.Context, key string, load Loader) ([]models.AggregatedItem, error) {
	loadCtx := context.WithoutCancel(ctx)

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		if items, ok := c.Get(key); ok {
			return items, nil
		}

		items := load(loadCtx)
		if len(items) > 0 {
			c.Set(key, items)
		}
		return items, nil
	})

	items, _ := v.([]models.AggregatedItem)
	if len(items) == 0 {
		return items, ErrEmptyLoad
	}
	return items, nil
}

// Len is the number of stored keys, including expired ones not yet replaced
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
