// Package cache stores computed election results in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/election-tally/internal/config"
)

// ResultCache is a JSON-encoding Redis cache implementing
// election.ResultCache.
type ResultCache struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewResultCache returns nil when rdb is nil or caching is disabled, so
// callers can pass the result straight into election.Deps.
func NewResultCache(rdb redis.UniversalClient, cfg config.CacheConfig) *ResultCache {
	if rdb == nil || !cfg.Enabled {
		return nil
	}
	return &ResultCache{rdb: rdb, ttl: cfg.TTL, prefix: cfg.Prefix}
}

func (c *ResultCache) key(k string) string { return c.prefix + ":" + k }

// Get decodes the cached value into dst.  A miss is (false, nil).
func (c *ResultCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		// a corrupt entry is treated as a miss and overwritten by the caller
		_ = c.rdb.Del(ctx, c.key(key)).Err()
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// Set stores value with the configured TTL.
func (c *ResultCache) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.rdb.Set(ctx, c.key(key), b, c.ttl).Err()
}
