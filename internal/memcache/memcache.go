// Package memcache implements a simple in-memory cache with expiring items.
package memcache

import (
	"log/slog"
	"sync"
	"time"
)

const cleanUpIntervalDefault = 10 * time.Minute

// Cache is an in-memory cache. It is safe for concurrent use.
type Cache struct {
	mu     sync.RWMutex
	items  map[string]item
	closeC chan struct{}
	once   sync.Once
}

type item struct {
	value     any
	expiresAt time.Time
}

func (i item) isExpired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// New returns a new cache which removes expired items in the background.
// Call Close to stop the background clean-up.
func New() *Cache {
	return NewWithInterval(cleanUpIntervalDefault)
}

// NewWithInterval returns a new cache with a custom clean-up interval.
// An interval of 0 disables the background clean-up.
func NewWithInterval(interval time.Duration) *Cache {
	c := &Cache{
		items:  make(map[string]item),
		closeC: make(chan struct{}),
	}
	if interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-c.closeC:
					return
				case <-ticker.C:
					if n := c.CleanUp(); n > 0 {
						slog.Debug("memcache: removed expired items", "count", n)
					}
				}
			}
		}()
	}
	return c
}

// Close stops the background clean-up. It is safe to call Close more than once.
func (c *Cache) Close() {
	c.once.Do(func() {
		close(c.closeC)
	})
}

// CleanUp removes all expired items and returns how many were removed.
func (c *Cache) CleanUp() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for k, i := range c.items {
		if i.isExpired(now) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

// Clear removes all items.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.items)
}

// Delete removes an item.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Get returns the value of an item and reports whether it was found.
// Expired items are not found.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	i, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || i.isExpired(time.Now()) {
		return nil, false
	}
	return i.value, true
}

// Set stores an item. An existing item with the same key is replaced.
// Items with a timeout of 0 never expire.
func (c *Cache) Set(key string, value any, timeout time.Duration) {
	var at time.Time
	if timeout > 0 {
		at = time.Now().Add(timeout)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = item{value: value, expiresAt: at}
}

// GetAs returns the value of an item as type T and reports whether it was found.
// Items of another type are not found.
func GetAs[T any](c *Cache, key string) (T, bool) {
	var z T
	x, ok := c.Get(key)
	if !ok {
		return z, false
	}
	v, ok := x.(T)
	if !ok {
		return z, false
	}
	return v, true
}
