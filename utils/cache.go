// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"vidaview/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client (promotion lookups).
	CacheClient *redis.Client
	// LockClient is the dedicated client for per-unit approval locks.
	LockClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
}

func pingOrDie(client *redis.Client, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
}

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
	pingOrDie(CacheClient, "Cache")
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitLockCache initializes the Redis client used for distributed locks.
func InitLockCache() {
	LockClient = newRedisClient(config.AppConfig.RedisLockDB)
	pingOrDie(LockClient, "Lock")
}

// GetLockClient returns the Redis client used for distributed locks.
func GetLockClient() *redis.Client {
	if LockClient == nil {
		InitLockCache()
	}
	return LockClient
}
