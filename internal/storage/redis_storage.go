package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps keys under "<prefix>:kv:<key>". A zero retention
// stores keys without expiry.
type RedisStorage struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

func NewRedisStorage(client *redis.Client, prefix string, retention time.Duration) *RedisStorage {
	return &RedisStorage{
		client:    client,
		prefix:    prefix,
		retention: retentionOrZero(retention),
	}
}

func (r *RedisStorage) redisKey(key string) string {
	return fmt.Sprintf("%s:kv:%s", r.prefix, key)
}

func (r *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("key %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get key from Redis: %w", err)
	}
	return data, nil
}

func (r *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.redisKey(key), value, r.retention).Err(); err != nil {
		return fmt.Errorf("failed to set key in Redis: %w", err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key from Redis: %w", err)
	}
	return nil
}
