// Package catalog is the read path into the authoritative tenant registry:
// one record per tenant holding the connection parameters and pool-sizing
// hints for that tenant's database.
//
// # Validation tiers
//
// Validation comes in two tiers because they run at very different points:
//
//   - IsValidCheap: a pure string-shape check with zero I/O, safe for
//     request filters where a registry round trip would serialize every
//     request behind the catalog's own database.
//   - IsValidAuthoritative: a full registry lookup, used by validation
//     endpoints and at pool-creation time, where an unknown or deactivated
//     tenant must never receive a live pool.
//
// # Default tenant
//
// One distinguished tenant id is always valid on both tiers and carries a
// built-in fallback record, so the process can bootstrap and serve the
// default tenant even before the registry store is reachable.
//
// # Backends
//
// The Store interface has three implementations: PostgresStore (pgx),
// MongoStore (mongo-driver), and MemoryStore for tests and single-tenant
// bootstrap setups.
//
// # Registry outages
//
// When the store is unreachable, IsValidAuthoritative serves a last-known-
// good answer from the RecordCache within its TTL and fails with
// ErrCatalogUnavailable beyond it. FindByID never serves stale connection
// parameters; the only fallback record is the built-in default tenant's.
package catalog
