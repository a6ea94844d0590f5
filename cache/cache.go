// Package cache holds recently served scrape responses so repeat
// requests can skip the network. Callers opt in per request and name the
// staleness they tolerate; nothing is ever served from cache by default.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/ericziethen/ez-scrape/models"
)

const (
	janitorInterval = 5 * time.Minute
	hardExpiry      = time.Hour
)

// Cache is an in-memory store of scrape responses, safe for concurrent
// use. A janitor goroutine drops entries older than an hour regardless
// of what freshness callers ask for.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]cached
	capacity int
}

type cached struct {
	resp     *models.ScrapeResponse
	storedAt time.Time
}

// New creates a cache holding at most capacity responses.
func New(capacity int) *Cache {
	c := &Cache{
		entries:  make(map[string]cached),
		capacity: capacity,
	}
	go c.janitor()
	return c
}

// Key derives the cache key from every request field that influences the
// scrape outcome. CacheMaxAgeS is zeroed first: requests differing only
// in how much staleness they tolerate share an entry.
func Key(req *models.ScrapeRequest) string {
	keyed := *req
	keyed.CacheMaxAgeS = 0

	// Struct fields marshal in declaration order and map keys sorted, so
	// the encoding is deterministic.
	data, _ := json.Marshal(keyed)

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns a stored response no older than maxAge, or a miss. The
// returned response is a copy; callers may annotate it freely.
func (c *Cache) Get(key string, maxAge time.Duration) (*models.ScrapeResponse, bool) {
	if maxAge <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Since(e.storedAt) > maxAge {
		return nil, false
	}

	resp := *e.resp
	return &resp, true
}

// Set stores resp under key, evicting an arbitrary entry when full.
func (c *Cache) Set(key string, resp *models.ScrapeResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.capacity {
		for victim := range c.entries {
			delete(c.entries, victim)
			break
		}
	}
	c.entries[key] = cached{resp: resp, storedAt: time.Now()}
}

func (c *Cache) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for range ticker.C {
		c.mu.Lock()
		for key, e := range c.entries {
			if time.Since(e.storedAt) > hardExpiry {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
	}
}
