package music

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// GenreCacheTTL is how long the available-genre list is cached.
const GenreCacheTTL = 24 * time.Hour

const genreCacheKey = "mindful-harmony:spotify:genres"

// GenreCache stores the available-genre list. Get reports false on a miss.
type GenreCache interface {
	Get(ctx context.Context) ([]string, bool, error)
	Set(ctx context.Context, genres []string) error
}

// RedisGenreCache keeps the genre list in Redis.
type RedisGenreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGenreCache creates a cache with GenreCacheTTL.
func NewRedisGenreCache(client *redis.Client) *RedisGenreCache {
	return &RedisGenreCache{client: client, ttl: GenreCacheTTL}
}

// Get returns the cached list.
func (c *RedisGenreCache) Get(ctx context.Context) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, genreCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get genres: %w", err)
	}
	var genres []string
	if err := json.Unmarshal(raw, &genres); err != nil {
		return nil, false, fmt.Errorf("decode cached genres: %w", err)
	}
	return genres, true, nil
}

// Set stores the list.
func (c *RedisGenreCache) Set(ctx context.Context, genres []string) error {
	raw, err := json.Marshal(genres)
	if err != nil {
		return fmt.Errorf("encode genres: %w", err)
	}
	if err := c.client.Set(ctx, genreCacheKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set genres: %w", err)
	}
	return nil
}
