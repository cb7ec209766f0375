package poolcache

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/routegrid/tenancy/pkg/catalog"
)

// Conn is one checked-out connection. The persistence layer that received
// it must call Release exactly once when its unit of work ends.
type Conn interface {
	Release()
}

// Pool is the narrow surface the cache needs from a live connection pool.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
	Close()
}

// Factory builds a live pool from a tenant's catalog record. It must honor
// the context deadline and return a fully usable pool or an error, never a
// half-built pool.
type Factory func(ctx context.Context, rec catalog.Record) (Pool, error)

// Fixed timeout defaults applied to every tenant pool unless overridden.
const (
	DefaultConnectTimeout  = 30 * time.Second
	DefaultMaxConnIdleTime = 10 * time.Minute
	DefaultMaxConnLifetime = 30 * time.Minute
)

// Defaults are the process-wide pool construction parameters. Per-tenant
// sizing hints from the catalog record take precedence over the size fields.
type Defaults struct {
	MaxPoolSize     int32         `env:"TENANCY_POOL_MAX_SIZE" envDefault:"10"`
	MinIdleSize     int32         `env:"TENANCY_POOL_MIN_IDLE" envDefault:"2"`
	ConnectTimeout  time.Duration `env:"TENANCY_POOL_CONNECT_TIMEOUT" envDefault:"30s"`
	MaxConnIdleTime time.Duration `env:"TENANCY_POOL_MAX_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime time.Duration `env:"TENANCY_POOL_MAX_LIFETIME" envDefault:"30m"`
}

func (d Defaults) normalized() Defaults {
	if d.MaxPoolSize <= 0 {
		d.MaxPoolSize = catalog.DefaultMaxPoolSize
	}
	if d.MinIdleSize <= 0 {
		d.MinIdleSize = catalog.DefaultMinIdleSize
	}
	if d.ConnectTimeout <= 0 {
		d.ConnectTimeout = DefaultConnectTimeout
	}
	if d.MaxConnIdleTime <= 0 {
		d.MaxConnIdleTime = DefaultMaxConnIdleTime
	}
	if d.MaxConnLifetime <= 0 {
		d.MaxConnLifetime = DefaultMaxConnLifetime
	}
	return d
}

type pgxPool struct {
	pool *pgxpool.Pool
}

func (p pgxPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return pgxConn{conn: conn}, nil
}

// Close drains in-flight checkouts before returning; pgxpool blocks until
// every acquired connection has been released.
func (p pgxPool) Close() {
	p.pool.Close()
}

type pgxConn struct {
	conn *pgxpool.Conn
}

func (c pgxConn) Release() {
	c.conn.Release()
}

// NewPgxFactory returns the production Factory: a pgxpool pool built from
// the record's connection URL, credentials and pool-sizing hints, verified
// with a ping before it is handed back.
func NewPgxFactory(defaults Defaults) Factory {
	d := defaults.normalized()

	return func(ctx context.Context, rec catalog.Record) (Pool, error) {
		cfg, err := pgxpool.ParseConfig(rec.ConnectionURL)
		if err != nil {
			return nil, errors.Join(ErrPoolCreationFailed, err)
		}
		if rec.Username != "" {
			cfg.ConnConfig.User = rec.Username
		}
		if rec.Secret != "" {
			cfg.ConnConfig.Password = rec.Secret
		}

		cfg.MaxConns = rec.MaxPoolSize
		cfg.MinConns = rec.MinIdleSize
		if cfg.MaxConns <= 0 {
			cfg.MaxConns = d.MaxPoolSize
		}
		if cfg.MinConns <= 0 {
			cfg.MinConns = d.MinIdleSize
		}
		cfg.ConnConfig.ConnectTimeout = d.ConnectTimeout
		cfg.MaxConnIdleTime = d.MaxConnIdleTime
		cfg.MaxConnLifetime = d.MaxConnLifetime

		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, errors.Join(ErrPoolCreationFailed, err)
		}

		// Catch bad credentials and unreachable targets now, not on the
		// first checkout.
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, errors.Join(ErrPoolCreationFailed, err)
		}

		return pgxPool{pool: pool}, nil
	}
}

// PgxPool unwraps a cache pool to its underlying pgxpool handle. Reports
// false for pools built by non-pgx factories.
func PgxPool(p Pool) (*pgxpool.Pool, bool) {
	pp, ok := p.(pgxPool)
	if !ok {
		return nil, false
	}
	return pp.pool, true
}

// PgxConn unwraps a checked-out connection to its pgx handle. This is the
// seam a pgx-based persistence layer uses to run queries.
func PgxConn(c Conn) (*pgxpool.Conn, bool) {
	pc, ok := c.(pgxConn)
	if !ok {
		return nil, false
	}
	return pc.conn, true
}
