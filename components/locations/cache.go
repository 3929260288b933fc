package locations

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes a Lookup for ttl. Concurrent identical queries share one
// upstream call. It has no background goroutine; expired entries are dropped
// on access or by Purge.
type Cache struct {
	lookup     Lookup
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

type cacheEntry struct {
	locations []Location
	expires   time.Time
}

// NewCache wraps lookup. A non-positive ttl caches forever, a non-positive
// maxEntries is unbounded and a nil clock uses time.Now.
func NewCache(lookup Lookup, ttl time.Duration, maxEntries int, clock func() time.Time) *Cache {
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		lookup:     lookup,
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        clock,
		entries:    make(map[string]cacheEntry),
	}
}

// Search returns cached results or calls the wrapped Lookup.
func (c *Cache) Search(ctx context.Context, query string, limit int) ([]Location, error) {
	key := strings.ToLower(strings.TrimSpace(query)) + "\x00" + strconv.Itoa(limit)

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		if c.ttl <= 0 || c.now().Before(entry.expires) {
			c.mu.Unlock()
			return append([]Location(nil), entry.locations...), nil
		}
		delete(c.entries, key)
	}
	c.mu.Unlock()

	// The shared call outlives any single caller's cancellation. Each caller
	// still stops waiting when its own ctx is done.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		found, err := c.lookup.Search(flightCtx, query, limit)
		if err != nil {
			return nil, err
		}
		c.store(key, found)
		return found, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return append([]Location(nil), res.Val.([]Location)...), nil
	}
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ttl <= 0 {
		return len(c.entries)
	}
	now := c.now()
	n := 0
	for _, entry := range c.entries {
		if now.Before(entry.expires) {
			n++
		}
	}
	return n
}

func (c *Cache) store(key string, found []Location) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evict(now)
	}
	c.entries[key] = cacheEntry{
		locations: append([]Location(nil), found...),
		expires:   now.Add(c.ttl),
	}
}

// evict removes expired entries, then the one closest to expiry if the cache
// is still full. Callers hold mu.
func (c *Cache) evict(now time.Time) {
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, entry := range c.entries {
		if c.ttl > 0 && !now.Before(entry.expires) {
			delete(c.entries, key)
			continue
		}
		if oldestKey == "" || entry.expires.Before(oldest) {
			oldestKey, oldest = key, entry.expires
		}
	}
	if len(c.entries) >= c.maxEntries && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
