// Package cache holds the serial to token id resolution cache and the
// reconciliation journal. Both come in an in-process flavor and a Redis one.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"warranty/internal/ledger"
)

const resolutionKeyPrefix = "warranty:resolution:"

// MemoryResolutionCache keeps ledger-resolved token ids in process memory.
// Serial to token id mappings never change, so entries do not expire.
type MemoryResolutionCache struct {
	mu      sync.RWMutex
	entries map[string]ledger.TokenID
}

func NewMemoryResolutionCache() *MemoryResolutionCache {
	return &MemoryResolutionCache{entries: make(map[string]ledger.TokenID)}
}

func (c *MemoryResolutionCache) Get(_ context.Context, serial string) (ledger.TokenID, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.entries[serial]
	return id, ok, nil
}

func (c *MemoryResolutionCache) Put(_ context.Context, serial string, tokenID ledger.TokenID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[serial] = tokenID
	return nil
}

// RedisResolutionCache shares ledger-resolved token ids across instances.
type RedisResolutionCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisResolutionCache stores entries for ttl. A zero ttl keeps them forever.
func NewRedisResolutionCache(client redis.Cmdable, ttl time.Duration) *RedisResolutionCache {
	return &RedisResolutionCache{client: client, ttl: ttl}
}

func (c *RedisResolutionCache) Get(ctx context.Context, serial string) (ledger.TokenID, bool, error) {
	raw, err := c.client.Get(ctx, resolutionKeyPrefix+serial).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get resolution: %w", err)
	}
	id, err := ledger.ParseTokenID(raw)
	if err != nil {
		return 0, false, fmt.Errorf("get resolution: %w", err)
	}
	return id, true, nil
}

func (c *RedisResolutionCache) Put(ctx context.Context, serial string, tokenID ledger.TokenID) error {
	if err := c.client.Set(ctx, resolutionKeyPrefix+serial, tokenID.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("put resolution: %w", err)
	}
	return nil
}
