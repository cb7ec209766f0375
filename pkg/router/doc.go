// Package router is the façade a persistence engine calls to obtain "the
// connection for the currently active tenant". It composes the tenant
// context, the catalog and the pool cache behind two narrow interfaces, so
// any ORM or hand-rolled data-access layer can be adapted with two
// functions: which tenant is this unit of work for, and hand me a
// connection for that tenant.
//
// A unit of work with no tenant identity is routed to the configured
// default tenant. That substitution is the one deliberate fallback in the
// whole routing layer; typed errors for unknown or deactivated tenants pass
// through untouched and are never downgraded to the default.
package router
