package caches

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"bim-review-service/internal/storage"
	"bim-review-service/internal/storage/cache"
)

const redisKeyPrefix = "rev:"

type RedisCache struct {
	client *storage.RedisClient
	ttl    time.Duration
	log    *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

func NewRedisCache(client *storage.RedisClient, ttl time.Duration, log *zap.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		log:    log.Named("redis_cache"),
	}
}

func (rc *RedisCache) Name() string {
	return "REDIS"
}

func (rc *RedisCache) Store(key string, data []byte) error {
	if err := rc.client.SetBytes(context.Background(), redisKeyPrefix+key, data, rc.ttl); err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}
	rc.log.Debug("stored", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

func (rc *RedisCache) Get(key string) ([]byte, error) {
	data, err := rc.client.GetBytes(context.Background(), redisKeyPrefix+key)
	if err != nil {
		rc.misses.Add(1)
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if data == nil {
		rc.misses.Add(1)
		return nil, cache.ErrMiss
	}
	rc.hits.Add(1)
	return data, nil
}

func (rc *RedisCache) Exists(key string) (bool, error) {
	n, err := rc.client.Exists(context.Background(), redisKeyPrefix+key)
	return n > 0, err
}

func (rc *RedisCache) Delete(key string) error {
	return rc.client.Delete(context.Background(), redisKeyPrefix+key)
}

func (rc *RedisCache) Clear() error {
	ctx := context.Background()
	keys, err := rc.client.Keys(ctx, redisKeyPrefix+"*")
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := rc.client.Delete(ctx, keys...); err != nil {
			return err
		}
	}
	rc.hits.Store(0)
	rc.misses.Store(0)
	rc.log.Info("cleared", zap.Int("keys", len(keys)))
	return nil
}

func (rc *RedisCache) GetStats() cache.LayerStats {
	hits := rc.hits.Load()
	misses := rc.misses.Load()
	keys, _ := rc.client.Keys(context.Background(), redisKeyPrefix+"*")

	return cache.LayerStats{
		Name:         "Redis",
		Objects:      len(keys),
		Hits:         hits,
		Misses:       misses,
		HitRate:      cache.HitRate(hits, misses),
		AvgLatencyMs: 15,
	}
}
