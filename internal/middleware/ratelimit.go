package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

const limiterKeyPrefix = "mindful-harmony:ratelimit"

// NewRedisClient parses redisURL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// NewLimiterStore returns a limiter store namespaced by configKey, backed
// by Redis when client is non-nil and by process memory otherwise.
func NewLimiterStore(client *redis.Client, configKey string) (limiter.Store, error) {
	opts := limiter.StoreOptions{
		Prefix:          limiterKeyPrefix + ":" + configKey,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	}
	if client == nil {
		return memory.NewStoreWithOptions(opts), nil
	}
	store, err := redisstore.NewStoreWithOptions(client, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}
	return store, nil
}
