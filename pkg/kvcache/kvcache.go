// Package kvcache is a namespaced JSON key-value cache over Redis. Reads fall
// back to a caller-supplied default on absence or malformed payloads, and
// write failures are logged but never propagated, so callers degrade silently
// instead of blocking on cache trouble.
package kvcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgredis "github.com/trendora/trendora-backend/pkg/redis"

	"github.com/trendora/trendora-backend/pkg/logger"
)

type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CacheKey(name string) string
}

// Cache reads and writes JSON documents under namespaced keys.
type Cache struct {
	store store
	logg  *logger.Logger
	ttl   time.Duration
}

// Options configures the cache.
type Options struct {
	// TTL applied to every write; zero means no expiry.
	TTL time.Duration
}

// New builds a cache backed by the provided redis client.
func New(client *pkgredis.Client, logg *logger.Logger, opts Options) *Cache {
	return &Cache{store: client, logg: logg, ttl: opts.TTL}
}

func newWithStore(s store, logg *logger.Logger, opts Options) *Cache {
	return &Cache{store: s, logg: logg, ttl: opts.TTL}
}

// Read unmarshals the value stored under key into dest. When the key is
// absent, the payload fails to parse, or the store errors, dest is populated
// from fallback instead and found is false.
func (c *Cache) Read(ctx context.Context, key string, dest any, fallback any) (found bool) {
	raw, err := c.store.Get(ctx, c.store.CacheKey(key))
	if err != nil {
		if !errors.Is(err, pkgredis.ErrNotFound) && c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), "cache read failed")
		}
		c.applyFallback(ctx, key, dest, fallback)
		return false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), "cache payload malformed, using fallback")
		}
		c.applyFallback(ctx, key, dest, fallback)
		return false
	}
	return true
}

// Write serializes the value and stores it under key. Failures are logged
// and swallowed.
func (c *Cache) Write(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		if c.logg != nil {
			c.logg.Error(c.logg.WithField(ctx, "cache_key", key), "cache value not serializable", err)
		}
		return
	}
	if err := c.store.Set(ctx, c.store.CacheKey(key), payload, c.ttl); err != nil {
		if c.logg != nil {
			c.logg.Error(c.logg.WithField(ctx, "cache_key", key), "cache write failed", err)
		}
	}
}

// Invalidate drops the key. Failures are logged and swallowed.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if err := c.store.Del(ctx, c.store.CacheKey(key)); err != nil {
		if c.logg != nil {
			c.logg.Error(c.logg.WithField(ctx, "cache_key", key), "cache invalidate failed", err)
		}
	}
}

func (c *Cache) applyFallback(ctx context.Context, key string, dest any, fallback any) {
	if fallback == nil {
		return
	}
	payload, err := json.Marshal(fallback)
	if err != nil {
		if c.logg != nil {
			c.logg.Error(c.logg.WithField(ctx, "cache_key", key), "cache fallback not serializable", err)
		}
		return
	}
	if err := json.Unmarshal(payload, dest); err != nil && c.logg != nil {
		c.logg.Error(c.logg.WithField(ctx, "cache_key", key), "cache fallback shape mismatch", err)
	}
}
