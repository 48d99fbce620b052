package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/bootcamp-tracker/config"
)

const (
	defaultCacheTTL = time.Minute
	cacheOpTimeout  = 2 * time.Second
)

// Cache is a small Redis backed JSON cache. A nil *Cache is valid and never hits,
// so callers do not need to know whether caching is enabled.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache returns nil when Redis is disabled in configuration. A failing ping is logged but
// not fatal; lookups then miss until Redis comes back.
func NewCache(cfg config.AppConfig) *Cache {
	if !cfg.RedisEnabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		Sugar.Warnf("redis ping failed addr=%s err=%v", client.Options().Addr, err)
	}
	return NewCacheWithClient(client, time.Duration(cfg.CacheTTLSeconds)*time.Second)
}

// NewCacheWithClient wraps an existing client.
func NewCacheWithClient(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// GetJSON decodes the cached value for key into v and reports whether it was found.
func (c *Cache) GetJSON(ctx context.Context, key string, v interface{}) bool {
	if c == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			Sugar.Debugf("cache get failed key=%s err=%v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		Sugar.Warnf("cache decode failed key=%s err=%v", key, err)
		return false
	}
	return true
}

// SetJSON stores v under key with the cache TTL. Failures are logged and otherwise ignored.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		Sugar.Warnf("cache set failed key=%s err=%v", key, err)
	}
}

// Invalidate deletes the given keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		Sugar.Warnf("cache invalidate failed keys=%v err=%v", keys, err)
	}
}

// Close releases the Redis connection pool.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
