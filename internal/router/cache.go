package router

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// datasetCache holds materialized datasets keyed per user, folder, and
// filename so repeated questions against the same table skip the blob
// download and parse. Entries expire after ttl; expired entries are dropped
// lazily on read.
type datasetCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	dataset   Dataset
	expiresAt time.Time
}

func newDatasetCache(ttl time.Duration, now func() time.Time) *datasetCache {
	if now == nil {
		now = time.Now
	}
	return &datasetCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

func cacheKey(userID, folderID uuid.UUID, filename string) string {
	return fmt.Sprintf("%s_%s_%s", userID, folderID, filename)
}

func (c *datasetCache) get(key string) (Dataset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Dataset{}, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return Dataset{}, false
	}
	return entry.dataset, true
}

func (c *datasetCache) put(key string, ds Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{dataset: ds, expiresAt: c.now().Add(c.ttl)}
}

func (c *datasetCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
