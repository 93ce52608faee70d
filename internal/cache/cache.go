// Package cache provides a small Redis-backed read-through cache for
// read-mostly reference data. The only thing the API caches is the list of
// active courts: it changes rarely and is read on every calendar view.
// Wallet balances and bookings are never cached — those are always read
// inside the database transaction that mutates them.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client. A nil *Cache is valid and disables caching
// entirely, so callers don't need to branch on whether Redis is configured.
type Cache struct {
	rdb redis.UniversalClient
}

// Connect dials Redis at addr and verifies the connection with a ping.
// Returns (nil, nil) when addr is empty — caching is simply off.
func Connect(ctx context.Context, addr string) (*Cache, error) {
	if addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  1 * time.Second,
		ReadTimeout:  400 * time.Millisecond,
		WriteTimeout: 400 * time.Millisecond,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &Cache{rdb: rdb}, nil
}

// GetJSON loads the value stored under key into dest.
// Returns false when the key is absent, Redis is unavailable, or caching is
// disabled — the caller then falls through to the database.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON stores value under key with the given TTL. Best effort: a cache
// write failure never fails the request.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key, raw, ttl).Err()
}

// Invalidate removes keys after a write to the underlying data.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}
