// Package tenant carries the tenant identity of one unit of work and guards
// the boundary where that identity enters the process.
//
// Every inbound operation (HTTP request, background job) runs on behalf of
// exactly one tenant. The package models that as a context value set at the
// boundary and read by the routing layer further down; it never performs I/O
// itself.
//
// # Propagation
//
// The tenant id travels on context.Context, scoped to the unit of work:
//
//	ctx := tenant.WithID(r.Context(), "acme")
//	id, ok := tenant.IDFromContext(ctx)
//
// Because the value lives on a per-request (or per-job) context that is
// discarded when the unit of work ends, a worker goroutine reused for a later
// operation can never observe a stale id: clearing happens structurally on
// every exit path, normal return and panic alike.
//
// # HTTP boundary
//
// Middleware extracts the id from the X-Tenant-ID header (or any custom
// Resolver), runs the cheap validity check, and installs the id before the
// handler chain runs:
//
//	r.Use(tenant.Middleware(tenant.NewHeaderResolver(""), cat))
//
// Requests with a malformed or missing-but-required tenant id are rejected
// before any persistence work is attempted.
//
// # Background jobs
//
// Jobs that are not request-driven use RunScoped, which confines the id to
// the lifetime of the callback:
//
//	err := tenant.RunScoped(ctx, "acme", func(ctx context.Context) error {
//		return worker.Process(ctx)
//	})
//
// # Leak detection
//
// A unit of work must begin with an empty tenant slot. The middleware treats
// a non-empty slot at entry as ErrContextLeak: it logs the condition loudly
// and discards the inherited id, since trusting it would be a silent
// cross-tenant data leak.
package tenant
