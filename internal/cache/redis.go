package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type redisCache[V any] struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

// NewRedisCache returns a cache backed by redis so multiple console
// replicas share entries. Values are stored as JSON. Redis errors degrade
// to cache misses; they are logged, never propagated.
func NewRedisCache[V any](client *redis.Client, prefix string, log *zap.Logger) Cache[V] {
	return &redisCache[V]{
		client: client,
		prefix: prefix,
		log:    log.Named("cache.redis"),
	}
}

func (c *redisCache[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		}
		return zero, false
	}
	var value V
	if err := json.Unmarshal(raw, &value); err != nil {
		c.log.Warn("redis value corrupt", zap.String("key", key), zap.Error(err))
		return zero, false
	}
	return value, true
}

func (c *redisCache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) {
	if key == "" {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("redis value encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		c.log.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *redisCache[V]) Delete(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.log.Warn("redis delete failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *redisCache[V]) Flush(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.log.Warn("redis flush delete failed", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("redis flush scan failed", zap.Error(err))
	}
}
