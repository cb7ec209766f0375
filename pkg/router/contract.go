package router

import (
	"context"

	"github.com/routegrid/tenancy/pkg/poolcache"
	"github.com/routegrid/tenancy/pkg/tenant"
)

// TenantSource reports the tenant identity of the current unit of work.
// The second return is false when the unit of work carries no tenant.
type TenantSource interface {
	CurrentTenant(ctx context.Context) (string, bool)
}

// ContextSource is the default TenantSource: it reads the id the HTTP
// middleware (or a job's RunScoped) placed on the context.
type ContextSource struct{}

func (ContextSource) CurrentTenant(ctx context.Context) (string, bool) {
	return tenant.IDFromContext(ctx)
}

// ConnectionProvider is the contract a persistence engine consumes: resolve
// a connection at unit-of-work start, release it at unit-of-work end. The
// engine never learns which physical database it was handed.
type ConnectionProvider interface {
	ResolveConnection(ctx context.Context) (poolcache.Conn, error)
	ReleaseConnection(conn poolcache.Conn)
}
