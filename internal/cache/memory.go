package cache

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Defaults applied by NewMemoryClient for non-positive limits.
const (
	DefaultMaxEntries       = 256
	DefaultMaxBytes   int64 = 512 << 20
)

// MemoryClient implements an in-memory cache with TTL expiry. It bounds both
// the number of entries and the total size of the stored values.
type MemoryClient struct {
	mu       sync.RWMutex
	data     map[string]cacheEntry
	maxSize  int
	maxBytes int64
	bytes    int64
	now      func() time.Time
	done     chan struct{}
	closed   sync.Once
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryClient creates a new in-memory cache client holding at most
// maxSize entries and maxBytes of values.
func NewMemoryClient(maxSize int, maxBytes int64) *MemoryClient {
	if maxSize <= 0 {
		maxSize = DefaultMaxEntries
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	c := &MemoryClient{
		data:     make(map[string]cacheEntry),
		maxSize:  maxSize,
		maxBytes: maxBytes,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	go c.cleanup(time.Minute)

	return c
}

// Get retrieves a value from cache.
func (c *MemoryClient) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[key]
	if !ok || !c.now().Before(entry.expiresAt) {
		return nil, ErrCacheMiss
	}

	return slices.Clone(entry.value), nil
}

// Set stores a value in cache with TTL. Entries with the earliest expiry are
// evicted until the value fits; a value larger than the whole budget is
// rejected with ErrValueTooLarge.
func (c *MemoryClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	size := int64(len(value))
	if size > c.maxBytes {
		return fmt.Errorf("%w: %d bytes, budget %d", ErrValueTooLarge, size, c.maxBytes)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.remove(key)
	for len(c.data) > 0 && (len(c.data) >= c.maxSize || c.bytes+size > c.maxBytes) {
		c.evictOldest()
	}

	c.data[key] = cacheEntry{
		value:     slices.Clone(value),
		expiresAt: c.now().Add(ttl),
	}
	c.bytes += size

	return nil
}

// Delete removes a value from cache.
func (c *MemoryClient) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.remove(key)
	return nil
}

// Bytes returns the total size of the stored values, expired ones included
func (c *MemoryClient) Bytes() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bytes
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryClient) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Close stops the cleanup goroutine.
func (c *MemoryClient) Close() error {
	c.closed.Do(func() { close(c.done) })
	return nil
}

// evictOldest removes the entry with the earliest expiration.
func (c *MemoryClient) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.data {
		if oldestKey == "" || entry.expiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.expiresAt
		}
	}

	if oldestKey != "" {
		c.remove(oldestKey)
	}
}

// remove deletes key and releases its bytes. Callers hold the write lock.
func (c *MemoryClient) remove(key string) {
	if entry, ok := c.data[key]; ok {
		c.bytes -= int64(len(entry.value))
		delete(c.data, key)
	}
}

// removeExpired drops every entry whose TTL has passed
func (c *MemoryClient) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.data {
		if !now.Before(entry.expiresAt) {
			c.remove(key)
		}
	}
}

// cleanup periodically removes expired entries.
func (c *MemoryClient) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}
