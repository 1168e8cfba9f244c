package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kjstillabower/weatherify/internal/models"
)

// RedisCache implements Cache using redis string keys with native TTL.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a RedisCache for addr (host:port) and db index.
func NewRedisCache(addr string, db int, timeout time.Duration) *RedisCache {
	if addr == "" {
		addr = "localhost:6379"
	}
	opts := &redis.Options{
		Addr: addr,
		DB:   db,
	}
	if timeout > 0 {
		opts.DialTimeout = timeout
		opts.ReadTimeout = timeout
		opts.WriteTimeout = timeout
	}
	return &RedisCache{client: redis.NewClient(opts)}
}

// Get implements Cache.Get.
func (c *RedisCache) Get(ctx context.Context, key string) ([]models.PlaceSuggestion, bool, error) {
	raw, err := c.client.Get(ctx, hashKey(keyPrefix, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var batch []models.PlaceSuggestion
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, false, err
	}
	return batch, true, nil
}

// Set implements Cache.Set. A non-positive ttl falls back to 1h.
func (c *RedisCache) Set(ctx context.Context, key string, value []models.PlaceSuggestion, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return c.client.Set(ctx, hashKey(keyPrefix, key), raw, ttl).Err()
}

// Ping checks if redis is reachable. Used for health checks.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the redis connection pool. Call during shutdown.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
