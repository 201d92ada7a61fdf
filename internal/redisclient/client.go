package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/reserve_stock.lua
var reserveStockScript string

//go:embed scripts/release_stock.lua
var releaseStockScript string

//go:embed scripts/commit_stock.lua
var commitStockScript string

type Client struct {
	rdb           *redis.Client
	reserveScript *redis.Script
	releaseScript *redis.Script
	commitScript  *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
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

	return &Client{
		rdb:           rdb,
		reserveScript: redis.NewScript(reserveStockScript),
		releaseScript: redis.NewScript(releaseStockScript),
		commitScript:  redis.NewScript(commitStockScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// ReserveStock atomically reserves stock using Lua script.
// Returns true if reservation successful, false if insufficient stock.
func (c *Client) ReserveStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	key := fmt.Sprintf("inventory:%d", productID)

	result, err := c.reserveScript.Run(ctx, c.rdb, []string{key}, quantity).Result()
	if err != nil {
		return false, fmt.Errorf("reserve stock script failed: %w", err)
	}

	success, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type")
	}

	return success == 1, nil
}

// ReleaseStock atomically releases reserved stock (compensation)
func (c *Client) ReleaseStock(ctx context.Context, productID int64, quantity int) error {
	key := fmt.Sprintf("inventory:%d", productID)

	_, err := c.releaseScript.Run(ctx, c.rdb, []string{key}, quantity).Result()
	if err != nil {
		return fmt.Errorf("release stock script failed: %w", err)
	}

	return nil
}

// CommitStock atomically commits reserved stock and returns the remaining
// available count so callers can raise low-stock alerts.
func (c *Client) CommitStock(ctx context.Context, productID int64, quantity int) (int, error) {
	key := fmt.Sprintf("inventory:%d", productID)

	result, err := c.commitScript.Run(ctx, c.rdb, []string{key}, quantity).Result()
	if err != nil {
		return 0, fmt.Errorf("commit stock script failed: %w", err)
	}

	available, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected script result type")
	}

	return int(available), nil
}

// InitInventory initializes inventory count in Redis
func (c *Client) InitInventory(ctx context.Context, productID int64, available, reserved int) error {
	key := fmt.Sprintf("inventory:%d", productID)

	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, key, "available", available)
	pipe.HSet(ctx, key, "reserved", reserved)

	_, err := pipe.Exec(ctx)
	return err
}

// GetInventory retrieves current inventory counts
func (c *Client) GetInventory(ctx context.Context, productID int64) (available, reserved int, err error) {
	key := fmt.Sprintf("inventory:%d", productID)

	result, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}

	if len(result) == 0 {
		return 0, 0, fmt.Errorf("inventory not found for product %d", productID)
	}

	var availableInt, reservedInt int
	fmt.Sscanf(result["available"], "%d", &availableInt)
	fmt.Sscanf(result["reserved"], "%d", &reservedInt)

	return availableInt, reservedInt, nil
}

// SaveSession stores a serialized checkout session for a staff terminal.
// Sessions expire after the TTL so an abandoned cart does not linger
// forever.
func (c *Client) SaveSession(ctx context.Context, staffID int64, data []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("checkout:session:%d", staffID), data, ttl).Err()
}

// LoadSession retrieves a serialized checkout session, nil if none exists.
func (c *Client) LoadSession(ctx context.Context, staffID int64) ([]byte, error) {
	data, err := c.rdb.Get(ctx, fmt.Sprintf("checkout:session:%d", staffID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteSession removes a checkout session
func (c *Client) DeleteSession(ctx context.Context, staffID int64) error {
	return c.rdb.Del(ctx, fmt.Sprintf("checkout:session:%d", staffID)).Err()
}

// SetAuthToken stores a bearer token mapped to the staff ID with TTL
func (c *Client) SetAuthToken(ctx context.Context, token string, staffID int64, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("auth:token:%s", token), staffID, ttl).Err()
}

// GetAuthToken resolves a bearer token to a staff ID. Returns 0, nil for an
// unknown or expired token.
func (c *Client) GetAuthToken(ctx context.Context, token string) (int64, error) {
	staffID, err := c.rdb.Get(ctx, fmt.Sprintf("auth:token:%s", token)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return staffID, nil
}

// DeleteAuthToken revokes a bearer token (logout)
func (c *Client) DeleteAuthToken(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("auth:token:%s", token)).Err()
}

// CacheReport stores a rendered report payload with TTL
func (c *Client) CacheReport(ctx context.Context, name string, data []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("report:%s", name), data, ttl).Err()
}

// DeleteCachedReport drops a cached report payload
func (c *Client) DeleteCachedReport(ctx context.Context, name string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("report:%s", name)).Err()
}

// GetCachedReport retrieves a cached report payload, nil if absent
func (c *Client) GetCachedReport(ctx context.Context, name string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, fmt.Sprintf("report:%s", name)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
