// Package cache implements the read-through cache primitives used by the
// catalog services: fixed keys holding a JSON projection, a TTL on every
// write and whole-key invalidation after mutations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/redis/go-redis/v9"
)

const (
	KeyAllCategories = "all_categories"
	KeyAllProducts   = "all_products"

	DefaultTTL = 60 * time.Second
)

type Cache struct {
	rdb     redis.Cmdable
	timeout time.Duration
}

type Option func(*Cache)

// WithTimeout bounds every single cache round trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) { c.timeout = d }
}

func New(rdb redis.Cmdable, opts ...Option) *Cache {
	c := &Cache{rdb: rdb, timeout: 2 * time.Second}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// TryGet returns the stored bytes and true on a hit. A missing or expired
// key is a miss, not an error.
func (c *Cache) TryGet(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, common.Unavailable("cache get", err)
	}
	return b, true, nil
}

// Put overwrites key with value; the entry expires after ttl.
func (c *Cache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return common.Unavailable("cache set", err)
	}
	return nil
}

// Invalidate removes the given keys. Removing an absent key succeeds.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return common.Unavailable("cache del", err)
	}
	return nil
}

// LoadJSON reads key and decodes it into T. An undecodable value is reported
// as an error so the caller can fall back to the store.
func LoadJSON[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	var v T
	b, ok, err := c.TryGet(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return v, true, nil
}

func StoreJSON[T any](ctx context.Context, c *Cache, key string, v T, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.Put(ctx, key, b, ttl)
}
