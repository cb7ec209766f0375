package catalog

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"
)

// DefaultStaleTTL bounds how long a last-known-good answer may stand in for
// the registry during an outage.
const DefaultStaleTTL = 5 * time.Minute

// Tenant ids are lowercase slugs: they appear in headers, database names and
// cache keys, so the shape check is deliberately strict.
var validID = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// Catalog is the façade over the registry store: default-tenant fallback,
// the two validation tiers, and last-known-good reads during outages.
type Catalog struct {
	store      Store
	cache      RecordCache
	defaultRec Record
	staleTTL   time.Duration
	log        *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithRecordCache installs a last-known-good record cache consulted when the
// registry store is unreachable.
func WithRecordCache(cache RecordCache) Option {
	return func(c *Catalog) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithStaleTTL bounds how long cached answers may serve during an outage.
func WithStaleTTL(ttl time.Duration) Option {
	return func(c *Catalog) {
		if ttl > 0 {
			c.staleTTL = ttl
		}
	}
}

// WithLogger sets the logger for outage diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Catalog) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Catalog over the given store. defaultRec is the built-in
// fallback for the distinguished default tenant; its ID names that tenant
// and the record is served, always active, whenever the store has no row for
// it, including when the store is completely empty or unreachable.
func New(store Store, defaultRec Record, opts ...Option) *Catalog {
	c := &Catalog{
		store:      store,
		cache:      NewNoOpRecordCache(),
		defaultRec: defaultRec.Normalized(),
		staleTTL:   DefaultStaleTTL,
		log:        slog.Default(),
	}
	c.defaultRec.Active = true
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultTenantID returns the distinguished default tenant id.
func (c *Catalog) DefaultTenantID() string {
	return c.defaultRec.ID
}

// IsValidCheap reports whether the id could name a tenant, with zero I/O.
// Hot-path filters use this tier; it deliberately admits ids that the
// registry has never heard of.
func (c *Catalog) IsValidCheap(id string) bool {
	if id == c.defaultRec.ID {
		return true
	}
	return validID.MatchString(id)
}

// IsValidAuthoritative reports whether the id names an existing, active
// tenant, consulting the registry. The default tenant short-circuits true
// without a store hit. During a registry outage a last-known-good answer is
// served within the stale TTL; beyond it the call fails with
// ErrCatalogUnavailable.
func (c *Catalog) IsValidAuthoritative(ctx context.Context, id string) (bool, error) {
	if id == c.defaultRec.ID {
		return true, nil
	}
	if !validID.MatchString(id) {
		return false, nil
	}

	rec, err := c.store.FindByID(ctx, id)
	switch {
	case err == nil:
		c.cache.Set(ctx, rec, c.staleTTL)
		return rec.Active, nil
	case errors.Is(err, ErrTenantNotFound):
		c.cache.Delete(ctx, id)
		return false, nil
	default:
		if cached, ok := c.cache.Get(ctx, id); ok {
			c.log.WarnContext(ctx, "tenant catalog unreachable, serving last-known-good validity",
				slog.String("tenant_id", id),
				slog.Any("error", err),
			)
			return cached.Active, nil
		}
		return false, errors.Join(ErrCatalogUnavailable, err)
	}
}

// FindByID loads one tenant's registry record. The default tenant resolves
// to the built-in fallback when absent from the store; every other id must
// have a live registry row; connection parameters are never served stale.
func (c *Catalog) FindByID(ctx context.Context, id string) (*Record, error) {
	if !c.IsValidCheap(id) {
		return nil, ErrTenantNotFound
	}

	rec, err := c.store.FindByID(ctx, id)
	switch {
	case err == nil:
		norm := rec.Normalized()
		c.cache.Set(ctx, &norm, c.staleTTL)
		return &norm, nil
	case errors.Is(err, ErrTenantNotFound):
		if id == c.defaultRec.ID {
			rec := c.defaultRec
			return &rec, nil
		}
		return nil, ErrTenantNotFound
	default:
		if id == c.defaultRec.ID {
			c.log.WarnContext(ctx, "tenant catalog unreachable, serving built-in default tenant record",
				slog.Any("error", err),
			)
			rec := c.defaultRec
			return &rec, nil
		}
		return nil, errors.Join(ErrCatalogUnavailable, err)
	}
}
