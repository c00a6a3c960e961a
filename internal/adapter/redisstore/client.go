// Package redisstore is a thin client over the remote cache service.
// Every operation is a single round trip; callers treat "store unavailable"
// as a first-class return value, never as a reason to abort a request.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/painradar/painradar-backend/internal/config"
)

// ErrNotConfigured is returned by every operation when no Redis URL was
// provided. An unconfigured store fails loudly rather than silently
// pretending writes succeeded.
var ErrNotConfigured = errors.New("redis store not configured")

// Client wraps a Redis connection with the narrow command set the
// orchestration layer needs.
type Client struct {
	rdb *redis.Client
}

// New creates a Client from config. An empty URL yields an explicitly
// unconfigured client whose operations all fail with ErrNotConfigured.
// A non-empty URL is parsed and the connection verified with a ping.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return &Client{}, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	opt.MaxRetries = cfg.MaxRetries
	opt.PoolSize = cfg.PoolSize
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.WriteTimeout = cfg.WriteTimeout

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close() //nolint:errcheck
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Configured reports whether the client has a live connection.
func (c *Client) Configured() bool { return c.rdb != nil }

// Get retrieves a string value. The second return is false on a miss.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	if c.rdb == nil {
		return "", false, ErrNotConfigured
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

// Set stores a string value with a TTL. A zero TTL means no expiration.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.rdb == nil {
		return ErrNotConfigured
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// SetNX atomically stores a value only when the key does not exist.
// Returns true if this call created the key.
func (c *Client) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if c.rdb == nil {
		return false, ErrNotConfigured
	}
	created, err := c.rdb.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return created, nil
}

// Del removes a key. Removing an absent key is not an error.
func (c *Client) Del(ctx context.Context, key string) error {
	if c.rdb == nil {
		return ErrNotConfigured
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Incr atomically increments an integer value, creating it at 1 if absent.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	if c.rdb == nil {
		return 0, ErrNotConfigured
	}
	val, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}
	return val, nil
}

// Expire sets a TTL on an existing key.
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if c.rdb == nil {
		return ErrNotConfigured
	}
	if err := c.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("redis expire: %w", err)
	}
	return nil
}

// TTL returns the remaining time to live for a key. The second return is
// false when the key does not exist or has no expiration.
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	if c.rdb == nil {
		return 0, false, ErrNotConfigured
	}
	ttl, err := c.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, false, fmt.Errorf("redis ttl: %w", err)
	}
	// -1: key exists without expiration; -2: key does not exist.
	if ttl < 0 {
		return 0, false, nil
	}
	return ttl, true, nil
}

// Ping verifies the connection, for health checks.
func (c *Client) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return ErrNotConfigured
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
