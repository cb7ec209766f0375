package tenant

import "errors"

var (
	// ErrNoTenantInContext is returned when a tenant id is required but the
	// current unit of work carries none.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrInvalidIdentifier is returned when a tenant identifier fails the
	// shape check.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrContextLeak indicates a unit of work began with a non-empty tenant
	// slot, meaning a previous unit of work skipped its clear. This is a bug
	// in the pipeline, not a recoverable condition.
	ErrContextLeak = errors.New("tenant context leaked across units of work")
)
