package recipeapi

import (
	"sync"

	"github.com/gregjones/httpcache"
)

// writeCache is an httpcache.Cache that remembers every key it stores so a
// successful write can drop all cached reads. httpcache itself only evicts
// the "METHOD url" key of a write, which never matches a cached GET.
type writeCache struct {
	httpcache.Cache

	mu   sync.Mutex
	keys map[string]struct{}
}

func newWriteCache(inner httpcache.Cache) *writeCache {
	return &writeCache{Cache: inner, keys: make(map[string]struct{})}
}

func (c *writeCache) Set(key string, resp []byte) {
	c.mu.Lock()
	c.keys[key] = struct{}{}
	c.mu.Unlock()

	c.Cache.Set(key, resp)
}

func (c *writeCache) Delete(key string) {
	c.mu.Lock()
	delete(c.keys, key)
	c.mu.Unlock()

	c.Cache.Delete(key)
}

// purge evicts every stored response.
func (c *writeCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.keys {
		c.Cache.Delete(key)
	}
	clear(c.keys)
}
