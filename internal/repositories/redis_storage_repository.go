package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// redisCommands is the subset of the go-redis client used by the repository
type redisCommands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// redisStorageRepository implements local storage on Redis, every key prefixed
type redisStorageRepository struct {
	client redisCommands
	prefix string
}

// NewRedisStorageRepository creates a new Redis backed local storage repository
func NewRedisStorageRepository(client redisCommands, prefix string) *redisStorageRepository {
	return &redisStorageRepository{
		client: client,
		prefix: prefix,
	}
}

// Get retrieves the value stored under key
func (r *redisStorageRepository) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get storage value: %w", err)
	}
	return value, nil
}

// Set stores value under key without expiration
func (r *redisStorageRepository) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set storage value: %w", err)
	}
	return nil
}

// Remove deletes key
func (r *redisStorageRepository) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to remove storage value: %w", err)
	}
	return nil
}
