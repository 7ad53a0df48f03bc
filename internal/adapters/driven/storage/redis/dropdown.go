// Package redis provides a Redis-backed dropdown cache shared between
// workstations.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
)

// DefaultPrefix namespaces every key written by the cache.
const DefaultPrefix = "hisforms:dropdown:"

// Ensure DropdownCache implements the interface.
var _ driven.DropdownCache = (*DropdownCache)(nil)

// DropdownCache stores option lists as JSON strings with a Redis TTL.
type DropdownCache struct {
	client *redis.Client
	prefix string
}

// NewDropdownCache connects to addr and verifies the server answers.
func NewDropdownCache(ctx context.Context, addr, password string) (*DropdownCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}

	return NewDropdownCacheWithClient(client, DefaultPrefix), nil
}

// NewDropdownCacheWithClient wraps an existing client.
func NewDropdownCacheWithClient(client *redis.Client, prefix string) *DropdownCache {
	return &DropdownCache{client: client, prefix: prefix}
}

func (c *DropdownCache) key(category string) string {
	return c.prefix + category
}

// Get returns the cached options of a category. Redis expires stale keys,
// so any key present is fresh.
func (c *DropdownCache) Get(ctx context.Context, category string) ([]string, bool, error) {
	data, err := c.client.Get(ctx, c.key(category)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", category, err)
	}

	var options []string
	if err := json.Unmarshal([]byte(data), &options); err != nil {
		return nil, false, fmt.Errorf("decoding dropdown %s: %w", category, err)
	}
	return options, true, nil
}

// Set stores options. A zero ttl never expires.
func (c *DropdownCache) Set(ctx context.Context, category string, options []string, ttl time.Duration) error {
	if options == nil {
		options = []string{}
	}
	value, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("encoding dropdown %s: %w", category, err)
	}
	if err := c.client.Set(ctx, c.key(category), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", category, err)
	}
	return nil
}

// Invalidate drops one category, or every key under the prefix when empty.
func (c *DropdownCache) Invalidate(ctx context.Context, category string) error {
	if category != "" {
		if err := c.client.Del(ctx, c.key(category)).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", category, err)
		}
		return nil
	}

	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Close closes the client.
func (c *DropdownCache) Close() error {
	return c.client.Close()
}
