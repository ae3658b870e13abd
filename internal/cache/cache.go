// Package cache stores conversion results between the upload and the
// download request.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/philipparndt/gomesh/internal/config"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// ErrValueTooLarge indicates a value that exceeds the cache's byte budget.
var ErrValueTooLarge = errors.New("value exceeds cache byte budget")

// Client defines the cache interface.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New creates the client selected by cfg.Driver
func New(cfg config.CacheConfig) (Client, error) {
	switch cfg.Driver {
	case "memory", "":
		return NewMemoryClient(cfg.MaxEntries, cfg.MaxBytes), nil
	case "redis":
		return NewRedisClient(RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
			Prefix:   cfg.Redis.Prefix,
		})
	}
	return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
}

// Key generates a cache key from components.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// ContentKey derives a key from a format tag and the uploaded bytes, so that
// identical uploads share one entry.
func ContentKey(format string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(format))
	h.Write([]byte{0})
	h.Write(data)
	return Key("content", hex.EncodeToString(h.Sum(nil)))
}
