// Package provision orchestrates tenant onboarding: from "catalog row
// exists" to "database created, schema applied, pool warm, serving".
//
// # Stages
//
// Each tenant moves through a fixed sequence:
//
//	Registered → DatabaseCreated → SchemaMigrated → Active
//
// with a terminal failure recording the stage and cause on the catalog row.
// A failed tenant stays non-serving; there is no automatic retry. Operators
// re-invoke SetupTenant, which is safe to repeat because every stage is
// idempotent: the database is created only if absent, and the migration
// tool keeps its own ledger of applied changesets.
//
// # Collaborators
//
// Database creation runs with the server's administrative credentials and
// bypasses the pool cache entirely; it is infrastructure setup, not tenant
// traffic. Schema application is delegated through the narrow Migrator
// interface; the goose-backed implementation is the default, but the
// coordinator never interprets the tool's internals.
package provision
