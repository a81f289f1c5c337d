package utils

import (
	"context"
	"log"
	"time"

	"pitchinvest/config"

	"github.com/go-redis/redis/v8"
)

var (
	// SessionCacheClient holds in-progress registration sessions.
	SessionCacheClient *redis.Client
	// OTPCacheClient is the dedicated client for OTP challenges.
	OTPCacheClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (db %d): %v", db, err)
	}
	return client
}

// InitRedis initializes every Redis client the service depends on.
func InitRedis() {
	SessionCacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
	OTPCacheClient = newRedisClient(config.AppConfig.RedisOTPDB)
}

// GetSessionCacheClient returns the registration session cache client.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		SessionCacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
	}
	return SessionCacheClient
}

// GetOTPCacheClient returns the Redis client for OTP challenges.
func GetOTPCacheClient() *redis.Client {
	if OTPCacheClient == nil {
		OTPCacheClient = newRedisClient(config.AppConfig.RedisOTPDB)
	}
	return OTPCacheClient
}
