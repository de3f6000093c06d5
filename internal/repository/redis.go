package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"appointd/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisSlotCache caches booked time cells per date in Redis so multiple
// instances share one view of the grid.
type RedisSlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisSlotCache(client *redis.Client, ttl time.Duration) *RedisSlotCache {
	return &RedisSlotCache{client: client, ttl: ttl}
}

func slotKey(date string) string {
	return "booked_times:" + date
}

func (c *RedisSlotCache) GetBookedTimes(ctx context.Context, date string) ([]string, bool, error) {
	if c.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := c.client.Get(ctx, slotKey(date)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get booked times from redis: %w", err)
	}

	var times []string
	if err := json.Unmarshal([]byte(val), &times); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal booked times: %w", err)
	}
	return times, true, nil
}

func (c *RedisSlotCache) SetBookedTimes(ctx context.Context, date string, times []string) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if times == nil {
		times = []string{}
	}
	data, err := json.Marshal(times)
	if err != nil {
		return fmt.Errorf("failed to marshal booked times: %w", err)
	}
	if err := c.client.Set(ctx, slotKey(date), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set booked times in redis: %w", err)
	}
	return nil
}

func (c *RedisSlotCache) Invalidate(ctx context.Context, date string) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := c.client.Del(ctx, slotKey(date)).Err(); err != nil {
		return fmt.Errorf("failed to delete booked times from redis: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
