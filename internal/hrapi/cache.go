package hrapi

import (
	"encoding/json"
	"sync"
	"time"
)

type cacheEntry struct {
	data     any
	storedAt time.Time
}

// ttlCache holds fetched payloads. Entries older than ttl read as absent but
// stay in the map until overwritten or cleared.
type ttlCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

func newTTLCache(ttl time.Duration, now func() time.Time) *ttlCache {
	return &ttlCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *ttlCache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.storedAt) >= c.ttl {
		return nil, false
	}
	return entry.data, true
}

func (c *ttlCache) set(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{data: data, storedAt: c.now()}
}

func (c *ttlCache) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *ttlCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func (c *ttlCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cacheKey joins the endpoint with its JSON-encoded parameters.
func cacheKey(endpoint string, params map[string]string) string {
	if params == nil {
		params = map[string]string{}
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return endpoint + "_{}"
	}
	return endpoint + "_" + string(encoded)
}

// ClearCache drops the cached payload of one endpoint, or everything when
// endpoint is empty.
func (c *Client) ClearCache(endpoint string) {
	if endpoint == "" {
		c.cache.clear()
		c.logger.Info("hr api cache cleared")
		return
	}
	c.cache.delete(cacheKey(endpoint, nil))
	c.logger.Info("hr api cache entry cleared", "endpoint", endpoint)
}

// CacheSize returns the number of cached entries, stale ones included.
func (c *Client) CacheSize() int {
	return c.cache.len()
}
