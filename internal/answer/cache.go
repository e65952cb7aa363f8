// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package answer

import (
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// MaxCachedQuestionLen is the longest question, in bytes, used as a
	// cache key. Longer questions are answered but never stored.
	MaxCachedQuestionLen = 1024

	// DefaultMaxEntries caps the cache when NewCache is given no limit.
	DefaultMaxEntries = 10000
)

// Cache memoizes answers by exact question text. Handbooks are immutable for
// the life of the process, so entries only expire to bound memory. At most
// maxEntries answers are held; once full, new questions bypass the cache
// until entries expire.
type Cache struct {
	next       Asker
	cache      *gocache.Cache
	now        func() time.Time
	maxEntries int

	// storeMu makes the count check and insert one step.
	storeMu sync.Mutex

	hits   atomic.Int64
	misses atomic.Int64
}

var _ Asker = (*Cache)(nil)

// CacheStats is a snapshot of cache effectiveness.
type CacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// NewCache wraps next with an in-memory cache of at most maxEntries
// answers. maxEntries <= 0 uses DefaultMaxEntries.
func NewCache(next Asker, ttl, cleanupInterval time.Duration, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		next:       next,
		cache:      gocache.New(ttl, cleanupInterval),
		now:        time.Now,
		maxEntries: maxEntries,
	}
}

// Answer returns a cached answer when one exists. Elapsed always reflects the
// current call.
func (c *Cache) Answer(question string) Answer {
	if len(question) > MaxCachedQuestionLen {
		c.misses.Add(1)
		return c.next.Answer(question)
	}

	start := c.now()
	if v, found := c.cache.Get(question); found {
		c.hits.Add(1)
		a := v.(Answer)
		a.Elapsed = c.now().Sub(start)
		return a
	}

	c.misses.Add(1)
	a := c.next.Answer(question)
	c.store(question, a)
	return a
}

// store inserts a unless the cache is full. Expired entries still count
// until the janitor removes them.
func (c *Cache) store(question string, a Answer) {
	c.storeMu.Lock()
	defer c.storeMu.Unlock()
	if c.cache.ItemCount() >= c.maxEntries {
		return
	}
	c.cache.SetDefault(question, a)
}

// Stats reports hit and miss counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.cache.ItemCount(),
	}
}

// Flush drops every cached answer.
func (c *Cache) Flush() {
	c.cache.Flush()
}
