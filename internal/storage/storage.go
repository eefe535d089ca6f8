// Package storage provides the key-value persistence surface used by the
// session store. Every backend is synchronous from the caller's point of view.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kaizen-online/internal/config"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("storage: key not found")

type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Open builds the backend selected by cfg.Driver. The returned close func
// releases the backend's resources.
func Open(ctx context.Context, cfg config.StorageConfig) (KV, func() error, error) {
	switch cfg.Driver {
	case "", "file":
		ls, err := NewLocalStorage(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return ls, func() error { return nil }, nil

	case "redis":
		client, err := ConnectRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedisStorage(client, cfg.Redis.Prefix, cfg.Retention), client.Close, nil

	case "memory":
		ms := NewMemoryStorage(cfg.Retention)
		return ms, ms.Close, nil
	}

	return nil, nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
}

// ConnectRedis accepts either a redis:// URL or a bare host:port.
func ConnectRedis(_ context.Context, addr string) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

func retentionOrZero(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
