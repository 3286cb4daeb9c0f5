package services

import (
	"sync"
	"time"
)

type cacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// reportCache keeps finished report payloads for their cache window so
// repeated dashboard polls skip the spatial joins.
type reportCache struct {
	mu    sync.RWMutex
	items map[string]*cacheItem
}

func newReportCache() *reportCache {
	cache := &reportCache{
		items: make(map[string]*cacheItem),
	}

	go cache.cleanupLoop()

	return cache
}

func (c *reportCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	if !ok {
		return nil, false
	}

	if time.Now().After(item.ExpiresAt) {
		return nil, false
	}

	return item.Data, true
}

func (c *reportCache) Set(key string, data interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	}
}

func (c *reportCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, item := range c.items {
			if now.After(item.ExpiresAt) {
				delete(c.items, key)
			}
		}
		c.mu.Unlock()
	}
}
