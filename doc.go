// Package tenancy is the tenant-aware database routing layer of the
// RouteGrid school-transport backend: every tenant's data lives in a
// physically separate database, and this module decides, per unit of work,
// which database that is.
//
// One running server process serves many tenants. An inbound request
// carries a tenant id (X-Tenant-ID header); pkg/tenant pins that identity
// to the request's context; pkg/catalog resolves it to connection
// parameters in the central registry; pkg/poolcache lazily materializes and
// caches one connection pool per tenant; pkg/router hands the persistence
// layer a connection from the right pool. pkg/provision onboards new
// tenants (create database, apply schema, activate), and pkg/tenantadmin
// exposes the operator surface.
//
// Wiring it together:
//
//	catPool, err := pg.Connect(ctx, pgCfg)
//	cat := catalog.New(catalog.NewPostgresStore(catPool), catalog.Record{
//		ID:            "primary",
//		ConnectionURL: defaultTenantURL,
//	}, catalog.WithRecordCache(catalog.NewMemoryRecordCache()))
//
//	pools := poolcache.New(cat)
//	defer pools.Close()
//
//	rt := router.New(pools, cat.DefaultTenantID())
//
//	r := chi.NewRouter()
//	r.Use(tenant.Middleware(tenant.NewHeaderResolver(""), cat))
//	// handlers reach the tenant's database through rt.Acquire(ctx)
//
// The module never interprets SQL, entities or transactions; a persistence
// engine integrates through the two-function seam in pkg/router.
package tenancy
