// Package cache is a thin Redis-backed result cache used by the dashboard.
// Keys are global: the dashboard shows account-level data identical for
// every privileged user.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores opaque byte payloads under string keys with a fixed TTL.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a Cache. A zero ttl defaults to 15 minutes.
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get returns the cached payload and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %q: %w", key, err)
	}
	return val, true, nil
}

// Set stores the payload under key for the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, val []byte) error {
	if err := c.rdb.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

// Invalidate drops a key, used when operators want a fresh dashboard.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache invalidate %q: %w", key, err)
	}
	return nil
}
