package imagesrc

import (
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

const fallbackCacheSize = 16

// Cache keeps recently decoded images so paging back and forth does not
// decode the same file again. Values pushed out of the cache are handed to
// the eviction callback, which can release GPU memory they hold.
type Cache[V any] struct {
	lru *lru.Cache[string, V]
}

// NewCache creates a cache holding up to size values. onEvict may be nil.
func NewCache[V any](size int, onEvict func(key string, value V)) *Cache[V] {
	c, err := lru.NewWithEvict[string, V](size, onEvict)
	if err != nil {
		slog.Warn("invalid decode cache size, using fallback", "size", size, "err", err)
		c, _ = lru.NewWithEvict[string, V](fallbackCacheSize, onEvict)
	}
	return &Cache[V]{lru: c}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

func (c *Cache[V]) Add(key string, value V) {
	c.lru.Add(key, value)
}

func (c *Cache[V]) Remove(key string) {
	c.lru.Remove(key)
}

func (c *Cache[V]) Len() int {
	return c.lru.Len()
}

// Resize changes the capacity, evicting the oldest values when shrinking.
func (c *Cache[V]) Resize(size int) {
	if size < 1 {
		size = fallbackCacheSize
	}
	c.lru.Resize(size)
}

// Purge drops every cached value.
func (c *Cache[V]) Purge() {
	c.lru.Purge()
}
