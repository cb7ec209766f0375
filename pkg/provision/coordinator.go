package provision

import (
	"context"
	"log/slog"

	"github.com/routegrid/tenancy/pkg/catalog"
)

// ConnectionParams is what the schema-migration hook receives: just enough
// to reach the tenant's freshly created database.
type ConnectionParams struct {
	ConnectionURL string
	Username      string
	Secret        string
}

// Migrator is the narrow hook into the external schema-migration tool. It
// returns the number of changesets applied and must be idempotent: applying
// an already-migrated database is a successful no-op.
type Migrator interface {
	ApplySchema(ctx context.Context, params ConnectionParams) (int, error)
}

// DatabaseAdmin creates tenant databases with administrative credentials,
// outside the pool cache.
type DatabaseAdmin interface {
	// EnsureDatabase creates the tenant's database if it does not exist.
	EnsureDatabase(ctx context.Context, rec catalog.Record) error
}

// PoolEvictor is the slice of the pool cache the coordinator needs:
// dropping a possibly stale pool entry before a tenant goes live.
type PoolEvictor interface {
	Evict(ctx context.Context, tenantID string)
}

// Coordinator drives tenants through the onboarding stages.
type Coordinator struct {
	store    catalog.Store
	admin    DatabaseAdmin
	migrator Migrator
	pools    PoolEvictor
	log      *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator's logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Coordinator. All collaborators are required.
func New(store catalog.Store, admin DatabaseAdmin, migrator Migrator, pools PoolEvictor, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    store,
		admin:    admin,
		migrator: migrator,
		pools:    pools,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register inserts a tenant's catalog row in the non-serving state. This is
// the Registered stage; SetupTenant performs the rest.
func (c *Coordinator) Register(ctx context.Context, rec catalog.Record) error {
	rec.Active = false
	if err := c.store.Create(ctx, rec.Normalized()); err != nil {
		return err
	}
	c.recordStage(ctx, rec.ID, StageRegistered, "")
	c.log.InfoContext(ctx, "tenant registered",
		slog.String("tenant_id", rec.ID),
	)
	return nil
}

// SetupTenant takes a registered tenant the rest of the way: create its
// database if absent, apply the schema, drop any stale pool entry and mark
// the catalog row active. Safe to re-invoke after a failure and a no-op
// beyond revalidation when the tenant is already serving.
func (c *Coordinator) SetupTenant(ctx context.Context, tenantID string) error {
	rec, err := c.store.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}

	if err := c.admin.EnsureDatabase(ctx, *rec); err != nil {
		return c.fail(ctx, tenantID, StageDatabaseCreated, err)
	}
	c.recordStage(ctx, tenantID, StageDatabaseCreated, "")

	applied, err := c.migrator.ApplySchema(ctx, ConnectionParams{
		ConnectionURL: rec.ConnectionURL,
		Username:      rec.Username,
		Secret:        rec.Secret,
	})
	if err != nil {
		return c.fail(ctx, tenantID, StageSchemaMigrated, err)
	}
	c.recordStage(ctx, tenantID, StageSchemaMigrated, "")

	// A previously failed attempt may have left a pool entry behind; the
	// first real unit of work must build its pool from the current record.
	c.pools.Evict(ctx, tenantID)

	if err := c.store.SetActive(ctx, tenantID, true); err != nil {
		return c.fail(ctx, tenantID, StageActive, err)
	}
	c.recordStage(ctx, tenantID, StageActive, "")

	c.log.InfoContext(ctx, "tenant active",
		slog.String("tenant_id", tenantID),
		slog.Int("changesets_applied", applied),
	)
	return nil
}

// fail records the failed stage and cause on the catalog row and returns a
// typed StageError. The tenant stays non-serving.
func (c *Coordinator) fail(ctx context.Context, tenantID string, stage Stage, cause error) error {
	c.recordStage(ctx, tenantID, stage, cause.Error())
	c.log.ErrorContext(ctx, "tenant provisioning failed",
		slog.String("tenant_id", tenantID),
		slog.String("stage", string(stage)),
		slog.Any("error", cause),
	)
	return &StageError{Stage: stage, Err: cause}
}

// recordStage is best effort: losing the stage marker costs diagnosis
// detail, not correctness.
func (c *Coordinator) recordStage(ctx context.Context, tenantID string, stage Stage, cause string) {
	if err := c.store.SetProvisioningState(ctx, tenantID, string(stage), cause); err != nil {
		c.log.WarnContext(ctx, "failed to record provisioning stage",
			slog.String("tenant_id", tenantID),
			slog.String("stage", string(stage)),
			slog.Any("error", err),
		)
	}
}
