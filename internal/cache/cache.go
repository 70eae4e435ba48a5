// Package cache provides a Redis-backed read-through cache for per-user
// list endpoints. Values are JSON-encoded and keyed by "<prefix>:<userID>".
//
// The cache is never a source of truth: every entry is reconstructible
// from the database, and any Redis failure degrades to calling the loader
// directly. Writers must Invalidate the affected key BEFORE returning the
// mutation's result so a user can never read a list predating their own
// write.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client for user-scoped read caching.
type Cache struct {
	rdb *redis.Client
}

// New creates a cache backed by the given Redis client.
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Key builds the canonical cache key for a user-scoped collection.
func Key(prefix, userID string) string {
	return prefix + ":" + userID
}

// GetOrLoad returns the cached value for key, or invokes loader on a miss
// and stores the result with the given TTL. Redis errors are logged and
// treated as misses; a loader error is returned as-is and nothing is cached.
func GetOrLoad[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, loader func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var value T
		if err := json.Unmarshal(data, &value); err == nil {
			return value, nil
		}
		// Corrupt entry: drop it and fall through to the loader.
		slog.Warn("cache entry unreadable, evicting", slog.String("key", key))
		_ = c.rdb.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("cache read failed, falling back to loader",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}

	value, err := loader(ctx)
	if err != nil {
		return zero, err
	}

	if data, err := json.Marshal(value); err == nil {
		if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
			slog.Warn("cache write failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
	}

	return value, nil
}

// Invalidate removes the entry for key unconditionally. A Redis failure
// here is an error: returning success while a stale entry survives would
// break read-after-own-write for the caller.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("invalidating cache key %s: %w", key, err)
	}
	return nil
}
