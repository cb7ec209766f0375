// Package pg connects the process to its Postgres databases. The routing
// layer uses it for exactly one pool: the catalog registry's own database.
// Per-tenant pools are built by poolcache from catalog records instead.
//
//	pool, err := pg.Connect(ctx, cfg)
//	store := catalog.NewPostgresStore(pool)
package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrFailedToParseConfig is returned for malformed connection strings.
	ErrFailedToParseConfig = errors.New("failed to parse postgres config")

	// ErrConnectionFailed is returned when all connection attempts are
	// exhausted.
	ErrConnectionFailed = errors.New("failed to connect to postgres")
)

// Config describes the catalog database connection.
type Config struct {
	ConnectionURL     string        `env:"TENANCY_CATALOG_PG_URL,required"`
	MaxOpenConns      int32         `env:"TENANCY_CATALOG_PG_MAX_CONNS" envDefault:"10"`
	MinIdleConns      int32         `env:"TENANCY_CATALOG_PG_MIN_CONNS" envDefault:"2"`
	HealthCheckPeriod time.Duration `env:"TENANCY_CATALOG_PG_HEALTHCHECK" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"TENANCY_CATALOG_PG_MAX_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"TENANCY_CATALOG_PG_MAX_LIFETIME" envDefault:"30m"`
	RetryAttempts     int           `env:"TENANCY_CATALOG_PG_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval     time.Duration `env:"TENANCY_CATALOG_PG_RETRY_INTERVAL" envDefault:"5s"`
}

// Connect establishes the catalog database pool, retrying with a growing
// backoff so a registry database restarting alongside this process does not
// fail startup.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseConfig, err)
	}
	poolCfg.MaxConns = cfg.MaxOpenConns
	poolCfg.MinConns = cfg.MinIdleConns
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}

	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

// Healthcheck adapts a pool to the func(ctx) error shape health endpoints
// expect.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		return pool.Ping(ctx)
	}
}
