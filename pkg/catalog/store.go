package catalog

import "context"

// Store is the durable backend of the tenant registry. Implementations must
// return ErrTenantNotFound for unknown ids and ErrTenantExists on duplicate
// registration; any other error is treated as a registry outage.
type Store interface {
	// FindByID loads one tenant's registry row.
	FindByID(ctx context.Context, id string) (*Record, error)

	// Create inserts a new registry row. Provisioning registers tenants
	// inactive; activation is a separate step.
	Create(ctx context.Context, rec Record) error

	// SetActive flips the serving flag for a tenant.
	SetActive(ctx context.Context, id string, active bool) error

	// SetProvisioningState records the last provisioning stage a tenant
	// reached, with the failure cause when the stage did not complete.
	SetProvisioningState(ctx context.Context, id, stage, cause string) error
}
