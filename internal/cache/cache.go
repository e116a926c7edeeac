/*
Copyright 2024 Tonlage Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cache fronts the slow, rate-limited metadata APIs (Last.fm,
// YouTube) with a Redis-backed cache so repeated enrichment of the same
// artist or track does not hit the network again.
package cache

import (
	"context"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/tonlage/tonlage/config"
	redis_db "github.com/tonlage/tonlage/internal/redis-db"
)

// Cache is the minimal cache surface the enrichment clients use.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, data interface{}) error
	Delete(ctx context.Context, key string) error
}

// RedisCache implements Cache on top of Redis with a local TinyLFU layer.
type RedisCache struct {
	cache *cache.Cache
}

// local cache entries; enrichment lookups are small strings
const cacheSize = 10000

// NewCache builds a cache from the configured Redis DNS.
func NewCache() (Cache, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	return NewCacheFromAddresses([]string{cfg.Redis.Dns})
}

// NewCacheFromAddresses builds a cache against explicit Redis addresses.
// Tests point this at miniredis.
func NewCacheFromAddresses(addresses []string) (*RedisCache, error) {
	client, err := redis_db.NewRedisClient(addresses)
	if err != nil {
		return nil, err
	}

	c := cache.New(&cache.Options{
		Redis:      client.Client(),
		LocalCache: cache.NewTinyLFU(cacheSize, time.Minute),
	})
	return &RedisCache{cache: c}, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	return r.cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: data,
		TTL:   ttl,
	})
}

func (r *RedisCache) Get(ctx context.Context, key string, data interface{}) error {
	return r.cache.Get(ctx, key, data)
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.cache.Delete(ctx, key)
}
