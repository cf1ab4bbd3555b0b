// Package redis opens the shared go-redis connection.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"warranty/internal/platform/config"
)

type Client struct {
	*redis.Client
}

// New dials cfg.URL and verifies it with a PING. It returns (nil, nil) when
// no URL is configured so callers can fall back to in-process state.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	parsed, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	applyPool(parsed, cfg)

	c := &Client{Client: redis.NewClient(parsed)}
	if err := c.Health(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis unreachable at %s: %w", parsed.Addr, err)
	}
	return c, nil
}

// applyPool overrides the URL's pool settings with any non-zero config value.
func applyPool(opts *redis.Options, cfg config.RedisConfig) {
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
}

// Health pings the server. It is registered as the "redis" health check.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
