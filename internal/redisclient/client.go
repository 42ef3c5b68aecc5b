package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// fixedWindowScript increments a windowed counter and sets its expiry on
// first use. Counters live in Redis rather than process memory so multiple
// service instances share the same limits.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// IncrWindow increments a fixed-window counter and returns the count for the
// current window.
func (c *Client) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	ms := window.Milliseconds()
	if ms <= 0 {
		ms = int64(time.Minute / time.Millisecond)
	}

	result, err := fixedWindowScript.Run(ctx, c.rdb, []string{fmt.Sprintf("counter:%s", key)}, ms).Result()
	if err != nil {
		return 0, fmt.Errorf("fixed window script failed: %w", err)
	}

	count, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected script result type %T", result)
	}

	return count, nil
}

// MarkWebhookSeen records a webhook reference for fast-path deduplication.
// The database processed_webhooks row stays authoritative; this only spares
// a transaction on obvious re-deliveries.
func (c *Client) MarkWebhookSeen(ctx context.Context, reference string, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("webhook:%s", reference), "1", ttl).Err()
}

// IsWebhookSeen checks the fast-path deduplication cache
func (c *Client) IsWebhookSeen(ctx context.Context, reference string) (bool, error) {
	result, err := c.rdb.Exists(ctx, fmt.Sprintf("webhook:%s", reference)).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}

// AcquireLock acquires a distributed lock
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases a distributed lock
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}
