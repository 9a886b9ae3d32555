package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/bnema/scribe/internal/domain"
	"github.com/bnema/scribe/internal/port"
)

var _ port.Cache = (*Cache)(nil)

// Cache is an in-process TTL cache. Entries are grouped into one expiring
// LRU per distinct TTL, each bounded to size entries.
type Cache struct {
	mu      sync.RWMutex
	size    int
	buckets map[time.Duration]*expirable.LRU[string, []byte]
}

func New(size int) *Cache {
	if size <= 0 {
		size = 10000
	}
	return &Cache{
		size:    size,
		buckets: make(map[time.Duration]*expirable.LRU[string, []byte]),
	}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: %w", domain.ErrCache, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, b := range c.buckets {
		if v, ok := b.Get(key); ok {
			return v, true, nil
		}
	}
	return nil, false, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCache, err)
	}
	if ttl <= 0 {
		return fmt.Errorf("%w: ttl must be positive", domain.ErrCache)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A key lives in exactly one bucket.
	for d, b := range c.buckets {
		if d != ttl {
			b.Remove(key)
		}
	}

	b, ok := c.buckets[ttl]
	if !ok {
		b = expirable.NewLRU[string, []byte](c.size, nil, ttl)
		c.buckets[ttl] = b
	}
	b.Add(key, value)
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCache, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, b := range c.buckets {
		for _, k := range keys {
			b.Remove(k)
		}
	}
	return nil
}

// Len returns the number of live entries across all buckets.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, b := range c.buckets {
		n += b.Len()
	}
	return n
}
