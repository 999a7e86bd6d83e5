// Package cache holds rendered catalog responses for the HTTP server.
//
// Entries belong to a catalog generation. Invalidate starts a new
// generation, so a load that began against the previous catalog can finish
// but its result is never served. Concurrent misses for one key share a
// single load.
package cache

import (
	"strconv"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Cache is a generation-scoped response cache.
type Cache struct {
	store *gocache.Cache
	group singleflight.Group
	gen   atomic.Uint64

	hits   atomic.Int64
	misses atomic.Int64
	shared atomic.Int64
}

// Stats describes cache usage.
type Stats struct {
	Generation uint64 `json:"generation"`
	Items      int    `json:"items"`
	Hits       int64  `json:"hits"`
	Misses     int64  `json:"misses"`
	Shared     int64  `json:"shared"`
}

// New returns a cache whose entries live for ttl. Expired entries are
// purged every cleanup.
func New(ttl, cleanup time.Duration) *Cache {
	return &Cache{store: gocache.New(ttl, cleanup)}
}

func (c *Cache) key(k string) string {
	return strconv.FormatUint(c.gen.Load(), 10) + ":" + k
}

// GetOrLoad returns the value cached for k in the current generation,
// calling load on a miss. Errors are returned to every waiter and not
// cached.
func (c *Cache) GetOrLoad(k string, load func() (any, error)) (any, error) {
	full := c.key(k)
	if v, ok := c.store.Get(full); ok {
		c.hits.Add(1)
		return v, nil
	}
	c.misses.Add(1)

	v, err, shared := c.group.Do(full, func() (any, error) {
		v, err := load()
		if err == nil {
			c.store.SetDefault(full, v)
		}
		return v, err
	})
	if shared {
		c.shared.Add(1)
	}
	return v, err
}

// Invalidate starts a new generation and drops every entry.
func (c *Cache) Invalidate() {
	c.gen.Add(1)
	c.store.Flush()
}

// Len returns the number of entries, including expired ones not yet purged.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

// Stats returns a usage snapshot.
func (c *Cache) Stats() Stats {
	return Stats{
		Generation: c.gen.Load(),
		Items:      c.store.ItemCount(),
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Shared:     c.shared.Load(),
	}
}
