package catalog

import "errors"

var (
	// ErrTenantNotFound is returned when an id is absent from the registry
	// and is not the default tenant.
	ErrTenantNotFound = errors.New("tenant not found in catalog")

	// ErrTenantInactive is returned when the registry row exists but the
	// tenant has been deactivated.
	ErrTenantInactive = errors.New("tenant is inactive")

	// ErrTenantExists is returned when registering an id that already has a
	// registry row.
	ErrTenantExists = errors.New("tenant already registered")

	// ErrCatalogUnavailable is returned when the registry store cannot be
	// reached and no last-known-good answer is available.
	ErrCatalogUnavailable = errors.New("tenant catalog unavailable")
)
