package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"order-analytics/internal/models"

	"github.com/go-redis/redis/v8"
)

// Client caches the raw rows fetched from storage, keyed per
// organization. Only raw rows are cached: derived analytics results are
// recomputed on every call and are never stored, so a stale cache can
// never leak one organization's aggregates into another's report.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// cachedRows is the serialized cache payload for one organization.
type cachedRows struct {
	Orders     []models.RawOrderRow    `json:"orders"`
	Deliveries []models.RawDeliveryRow `json:"deliveries"`
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
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

	return &Client{rdb: rdb, ttl: ttl}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func rowsKey(org string) string {
	return fmt.Sprintf("rows:%s", org)
}

// GetRows returns the cached raw rows for an organization, or ok=false
// on a miss.
func (c *Client) GetRows(ctx context.Context, org string) ([]models.RawOrderRow, []models.RawDeliveryRow, bool, error) {
	data, err := c.rdb.Get(ctx, rowsKey(org)).Bytes()
	if err == redis.Nil {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("cache get failed: %w", err)
	}

	var cached cachedRows
	if err := json.Unmarshal(data, &cached); err != nil {
		// A corrupt entry behaves like a miss; the next SetRows repairs it.
		return nil, nil, false, nil
	}
	return cached.Orders, cached.Deliveries, true, nil
}

// SetRows stores the raw rows for an organization with the configured TTL.
func (c *Client) SetRows(ctx context.Context, org string, orders []models.RawOrderRow, deliveries []models.RawDeliveryRow) error {
	data, err := json.Marshal(cachedRows{Orders: orders, Deliveries: deliveries})
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return c.rdb.Set(ctx, rowsKey(org), data, c.ttl).Err()
}

// InvalidateRows drops the cached rows for an organization. Called by
// the worker when the order system reports a mutation.
func (c *Client) InvalidateRows(ctx context.Context, org string) error {
	return c.rdb.Del(ctx, rowsKey(org)).Err()
}
