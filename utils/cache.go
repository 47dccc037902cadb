// File: utils/cache.go
package utils

import (
	"context"
	"time"

	"cafedesk/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CacheClient caches synthesized reply audio URLs by text hash.
var CacheClient *redis.Client

// InitCache initializes the Redis cache client. The cache only short-cuts
// repeated synthesis, so an unreachable Redis is reported, not fatal.
func InitCache() error {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := CacheClient.Ping(ctx).Err(); err != nil {
		CacheClient = nil
		return err
	}
	return nil
}

// GetCacheClient returns the cache client, or nil when Redis is unavailable.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		if err := InitCache(); err != nil {
			GetLogger().Warn("Redis cache unavailable, synthesis caching disabled", zap.Error(err))
		}
	}
	return CacheClient
}
