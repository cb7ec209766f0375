// Package tenantadmin exposes the routing layer's operator surface as a chi
// subrouter: inspect cached pools, force-evict a tenant's pool, validate a
// tenant id against the authoritative catalog, and trigger provisioning.
//
// The host application mounts it behind its own authentication:
//
//	r.Mount("/admin", tenantadmin.New(pools, cat, coordinator).Router())
package tenantadmin
