// Copyright (c) 2026 Tribuna. All rights reserved.

// Redis implementation of the settings read cache.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tribuna-io/tribuna/internal/platform/apperr"
	"github.com/tribuna-io/tribuna/internal/platform/constants"
)

// RedisCache implements the [Cache] interface on top of go-redis.
type RedisCache struct {
	client *redis.Client
}

// NewCache creates a new Redis implementation of the [Cache].
func NewCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// cacheKey builds the Redis key for a setting code.
func cacheKey(code string) string {
	return constants.RedisPrefixSetting + code
}

// Get returns the cached setting, or [apperr.NotFound] on a miss.
func (cache *RedisCache) Get(ctx context.Context, code string) (*Setting, error) {
	payload, err := cache.client.Get(ctx, cacheKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Setting")
		}
		return nil, apperr.Internal(err)
	}

	setting := &Setting{}
	if err := json.Unmarshal(payload, setting); err != nil {
		return nil, apperr.Internal(err)
	}

	return setting, nil
}

// Set stores a setting under its code with the given TTL.
func (cache *RedisCache) Set(ctx context.Context, setting *Setting, ttl time.Duration) error {
	payload, err := json.Marshal(setting)
	if err != nil {
		return apperr.Internal(err)
	}

	if err := cache.client.Set(ctx, cacheKey(setting.Code), payload, ttl).Err(); err != nil {
		return apperr.Internal(err)
	}

	return nil
}

// Invalidate drops the cached entry for a code.
func (cache *RedisCache) Invalidate(ctx context.Context, code string) error {
	if err := cache.client.Del(ctx, cacheKey(code)).Err(); err != nil {
		return apperr.Internal(err)
	}

	return nil
}
