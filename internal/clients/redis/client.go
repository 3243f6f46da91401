package redis

import (
	"adledger-server/internal/config"
	"adledger-server/internal/observability"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key does not exist
var ErrCacheMiss = errors.New("cache miss")

var errNotInitialized = errors.New("Redis client not initialized")

// Client wraps the Redis client with observability
type Client struct {
	client *redis.Client
	logger *observability.Logger
}

// NewClient creates a new Redis client. A disabled config returns a nil
// client, which every method treats as unavailable.
func NewClient(cfg config.RedisConfig, logger *observability.Logger) (*Client, error) {
	if !cfg.Enabled {
		logger.Info(context.Background(), "Redis is disabled, skipping client initialization")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info(ctx, "successfully connected to Redis",
		observability.Field{Key: "host", Value: cfg.Host},
		observability.Field{Key: "port", Value: cfg.Port},
		observability.Field{Key: "db", Value: cfg.DB},
	)

	return NewFromClient(client, logger), nil
}

// NewFromClient wraps an existing go-redis client
func NewFromClient(client *redis.Client, logger *observability.Logger) *Client {
	return &Client{
		client: client,
		logger: logger,
	}
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	if c == nil {
		return nil
	}
	return c.client
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// IsEnabled returns whether Redis is enabled
func (c *Client) IsEnabled() bool {
	return c != nil && c.client != nil
}

// Ping checks the connection, used by the health endpoint
func (c *Client) Ping(ctx context.Context) error {
	if !c.IsEnabled() {
		return errNotInitialized
	}
	return c.client.Ping(ctx).Err()
}

// Get returns the raw value of key or ErrCacheMiss
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.IsEnabled() {
		return nil, errNotInitialized
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return val, err
}

// Set stores value under key for ttl
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !c.IsEnabled() {
		return errNotInitialized
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

// WindowResult is the state of a sliding window after one hit
type WindowResult struct {
	Allowed bool
	Count   int64
	Oldest  time.Time
}

// SlidingWindowHit records one hit against key and reports whether it fits
// within limit hits per window. Hits are members of a sorted set scored by
// their timestamp in milliseconds. A rejected hit is removed again so it
// does not count against the caller.
func (c *Client) SlidingWindowHit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (WindowResult, error) {
	if !c.IsEnabled() {
		return WindowResult{}, errNotInitialized
	}

	nowMs := now.UnixMilli()
	windowStartMs := now.Add(-window).UnixMilli()
	member := strconv.FormatInt(nowMs, 10) + "-" + uuid.NewString()

	pipe := c.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStartMs, 10))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: member})
	countCmd := pipe.ZCard(ctx, key)
	oldestCmd := pipe.ZRangeWithScores(ctx, key, 0, 0)
	pipe.Expire(ctx, key, 2*window)
	if _, err := pipe.Exec(ctx); err != nil {
		return WindowResult{}, fmt.Errorf("failed to record rate limit hit: %w", err)
	}

	result := WindowResult{Count: countCmd.Val(), Allowed: countCmd.Val() <= int64(limit), Oldest: now}
	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		result.Oldest = time.UnixMilli(int64(oldest[0].Score))
	}
	if !result.Allowed {
		if err := c.client.ZRem(ctx, key, member).Err(); err != nil {
			c.logger.WarnWithError(ctx, "failed to remove rejected rate limit hit", err)
		}
	}
	return result, nil
}
