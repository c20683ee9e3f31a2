package cache

import (
	"context"
	"time"

	"campus-scheduler/core/config"
	"campus-scheduler/core/logger"

	"github.com/redis/go-redis/v9"
)

// Cache is the durable shared store backing the registration cache and the
// notification feed. Repositories build their own key layouts on top of it.
type Cache interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, values map[string]string) error
	Del(ctx context.Context, keys ...string) error
	LPush(ctx context.Context, key string, value string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LSet(ctx context.Context, key string, index int64, value string) error
	LLen(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

func New(cfg config.RedisConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Cache:New:Ping:Error", "error", err, "addr", cfg.Addr)
		return nil, err
	}

	logger.Info("Cache:New:Connected", "addr", cfg.Addr, "db", cfg.DB)
	return &redisCache{client: client}, nil
}

func (c *redisCache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return c.client.HGetAll(ctx, key).Result()
}

func (c *redisCache) HSet(ctx context.Context, key string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	flat := make([]any, 0, len(values)*2)
	for k, v := range values {
		flat = append(flat, k, v)
	}
	return c.client.HSet(ctx, key, flat...).Err()
}

func (c *redisCache) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) LPush(ctx context.Context, key string, value string) error {
	return c.client.LPush(ctx, key, value).Err()
}

func (c *redisCache) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return c.client.LRange(ctx, key, start, stop).Result()
}

func (c *redisCache) LSet(ctx context.Context, key string, index int64, value string) error {
	return c.client.LSet(ctx, key, index, value).Err()
}

func (c *redisCache) LLen(ctx context.Context, key string) (int64, error) {
	return c.client.LLen(ctx, key).Result()
}

func (c *redisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Expire(ctx, key, ttl).Err()
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
