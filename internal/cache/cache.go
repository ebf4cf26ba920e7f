// Package cache stores query results keyed by string. Values are opaque
// bytes; callers encode them.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a TTL key/value store.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// Drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// New builds the cache selected by driver.
func New(driver, redisURL string) (Cache, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverRedis:
		r, err := NewRedis(redisURL)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, errors.New("cache: unknown driver " + driver)
	}
}
