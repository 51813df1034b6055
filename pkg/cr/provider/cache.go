package provider

import (
	"context"
	"sync"
	"time"

	"github.com/komsit37/creditrisk/pkg/cr/types"
)

// CacheProvider decorates a Provider with a TTL+LRU cache keyed by ticker.
// Failures are not cached.
type CacheProvider struct {
	next Provider
	ttl  time.Duration
	size int
	now  func() time.Time

	mu    sync.Mutex
	items map[string]cacheEntry
	order []string // LRU order, oldest at index 0
}

type cacheEntry struct {
	at   time.Time
	data types.CompanyData
}

func NewCacheProvider(next Provider, ttl time.Duration, size int) *CacheProvider {
	if size <= 0 {
		size = 1
	}
	return &CacheProvider{next: next, ttl: ttl, size: size, now: time.Now, items: make(map[string]cacheEntry)}
}

func (c *CacheProvider) Fetch(ctx context.Context, ticker string) (types.CompanyData, error) {
	now := c.now()
	c.mu.Lock()
	if ent, ok := c.items[ticker]; ok {
		if now.Sub(ent.at) <= c.ttl {
			c.touchLocked(ticker)
			d := ent.data
			c.mu.Unlock()
			return d, nil
		}
		delete(c.items, ticker)
		c.removeFromOrderLocked(ticker)
	}
	c.mu.Unlock()

	d, err := c.next.Fetch(ctx, ticker)
	if err != nil {
		return d, err
	}
	c.mu.Lock()
	if _, ok := c.items[ticker]; ok {
		c.removeFromOrderLocked(ticker)
	}
	c.items[ticker] = cacheEntry{at: now, data: d}
	c.order = append(c.order, ticker)
	for len(c.items) > c.size && len(c.order) > 0 {
		old := c.order[0]
		c.order = c.order[1:]
		delete(c.items, old)
	}
	c.mu.Unlock()
	return d, nil
}

// Len returns the number of cached tickers.
func (c *CacheProvider) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *CacheProvider) touchLocked(k string) {
	c.removeFromOrderLocked(k)
	c.order = append(c.order, k)
}

func (c *CacheProvider) removeFromOrderLocked(k string) {
	for i, v := range c.order {
		if v == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
