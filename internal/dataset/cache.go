// Package dataset consolidates stored files into one queryable record set
// and caches the result for a bounded freshness window.
package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/powerviz/plant-data-api/internal/domain"
	"github.com/powerviz/plant-data-api/internal/observability"
)

// FetchFunc produces a freshly consolidated dataset on a cache miss.
type FetchFunc func(ctx context.Context) ([]domain.GenerationRecord, error)

// Cache holds the last consolidated dataset with its consolidation time.
// Entries younger than the freshness window are served without touching the
// store. Concurrent misses may each run the fetch; the last writer wins,
// which costs a redundant recomputation but never correctness.
type Cache struct {
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu        sync.Mutex
	records   []domain.GenerationRecord
	fetchedAt time.Time
	valid     bool
}

// NewCache creates a dataset cache. The clock is injected so freshness-window
// behavior can be tested deterministically.
func NewCache(ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *Cache {
	return &Cache{ttl: ttl, clock: clock, metrics: metrics}
}

// Get returns the cached dataset when it is still fresh, otherwise runs
// fetch and caches its result. An empty dataset is cached like any other, so
// repeated scans of an empty store are also absorbed by the window. A fetch
// error leaves the previous entry untouched and is returned to the caller.
func (c *Cache) Get(ctx context.Context, fetch FetchFunc) ([]domain.GenerationRecord, error) {
	c.mu.Lock()
	if c.valid && c.clock.Since(c.fetchedAt) < c.ttl {
		records := c.records
		c.mu.Unlock()
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return records, nil
	}
	c.mu.Unlock()
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	// Fetch outside the lock so a slow consolidation cannot stall
	// concurrent requests that still see a fresh entry.
	records, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.records = records
	c.fetchedAt = c.clock.Now()
	c.valid = true
	c.mu.Unlock()

	return records, nil
}

// Invalidate forces the next Get to recompute. Called after a successful
// upload so new data becomes visible without waiting out the window.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}
