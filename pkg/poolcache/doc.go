// Package poolcache owns the live connection pools of a multi-tenant
// process: zero or one pool per tenant id, created lazily on first use from
// the tenant's catalog record, reused until evicted.
//
// # Concurrency
//
// The cache is read-mostly: an already-cached pool is returned from a shared
// read lock without touching any per-tenant state. Cold starts are
// serialized per tenant id (N concurrent first requests for one tenant
// build exactly one pool) while different tenants' cold starts proceed
// fully in parallel. A global lock around creation would silently serialize
// every tenant's cold start behind every other's; the per-tenant keyed locks
// exist to rule that out.
//
// Eviction holds the same per-tenant lock as creation, so a pool can never
// be half-closed while a new one for the same tenant is being built, and a
// GetOrCreate immediately after Evict always observes a fresh handle.
//
// # Construct then publish
//
// A pool enters the cache only after it has been fully built and verified.
// A creation attempt that fails or times out leaves no trace; the caller's
// deadline travels into the factory untouched.
//
// # Pools
//
// The default Factory builds pgxpool pools from the record's connection
// parameters and pool-sizing hints, with fixed sane timeout defaults
// (30s connect, 10m idle, 30m lifetime). Tests inject their own Factory;
// nothing in the cache itself knows about Postgres.
package poolcache
