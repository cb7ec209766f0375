package router

import (
	"context"
	"log/slog"

	"github.com/routegrid/tenancy/pkg/poolcache"
)

// Router resolves the current tenant and checks out one connection from
// that tenant's pool. One instance per process, injected into whatever
// persistence layer the application uses.
type Router struct {
	pools           *poolcache.Cache
	source          TenantSource
	defaultTenantID string
	log             *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithTenantSource overrides how the current tenant is determined.
func WithTenantSource(source TenantSource) Option {
	return func(r *Router) {
		if source != nil {
			r.source = source
		}
	}
}

// WithLogger sets the router's logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates a Router over the given pool cache. defaultTenantID is
// substituted when the unit of work carries no tenant identity.
func New(pools *poolcache.Cache, defaultTenantID string, opts ...Option) *Router {
	r := &Router{
		pools:           pools,
		source:          ContextSource{},
		defaultTenantID: defaultTenantID,
		log:             slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire checks out one connection from the current tenant's pool,
// building the pool on first use. The caller must Release the connection
// when its unit of work ends.
func (r *Router) Acquire(ctx context.Context) (poolcache.Conn, error) {
	id, ok := r.source.CurrentTenant(ctx)
	if !ok {
		// The documented fallback: no tenant on the unit of work means the
		// default tenant, not an error. Typed errors for known-but-broken
		// tenants are never rerouted here.
		id = r.defaultTenantID
		r.log.DebugContext(ctx, "no tenant on unit of work, routing to default tenant",
			slog.String("tenant_id", id),
		)
	}

	pool, err := r.pools.GetOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}
	return pool.Acquire(ctx)
}

// Release returns a connection to its pool. Safe on nil.
func (r *Router) Release(conn poolcache.Conn) {
	if conn != nil {
		conn.Release()
	}
}

// ResolveConnection implements ConnectionProvider.
func (r *Router) ResolveConnection(ctx context.Context) (poolcache.Conn, error) {
	return r.Acquire(ctx)
}

// ReleaseConnection implements ConnectionProvider.
func (r *Router) ReleaseConnection(conn poolcache.Conn) {
	r.Release(conn)
}

var _ ConnectionProvider = (*Router)(nil)
