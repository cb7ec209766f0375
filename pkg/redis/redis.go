// Package redis connects the process to the Redis instance backing the
// shared last-known-good catalog cache.
//
//	client, err := redis.Connect(ctx, cfg)
//	cache := catalog.NewRedisRecordCache(client)
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrFailedToParseURL is returned for malformed connection URLs.
	ErrFailedToParseURL = errors.New("failed to parse redis connection url")

	// ErrNotReady is returned when all connection attempts are exhausted.
	ErrNotReady = errors.New("redis connection not ready")
)

// Config describes the Redis connection.
type Config struct {
	ConnectionURL  string        `env:"TENANCY_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"TENANCY_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"TENANCY_REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"TENANCY_REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// Connect establishes a verified Redis client, retrying within the
// configured connect timeout.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		} else {
			lastErr = err
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, errors.Join(ErrNotReady, lastErr)
}
