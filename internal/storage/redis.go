package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV is a Redis-backed key-value store. It holds the user's selected
// provider and any API keys saved from the settings surface.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// RedisKVConfig holds Redis connection settings for the KV store.
type RedisKVConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisKV connects to Redis and verifies the connection.
func NewRedisKV(cfg RedisKVConfig) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisKVFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisKVFromClient wraps an existing client; tests use this with
// miniredis.
func NewRedisKVFromClient(client *redis.Client, prefix string) *RedisKV {
	if prefix == "" {
		prefix = "settings"
	}
	return &RedisKV{client: client, prefix: prefix}
}

// Get retrieves the value for key, or ErrNotFound.
func (s *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.prefix+":"+key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", key, err)
	}
	return val, nil
}

// Set stores value under key with no expiration.
func (s *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+":"+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisKV) Close() error {
	return s.client.Close()
}
