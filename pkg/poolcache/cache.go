package poolcache

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/routegrid/tenancy/pkg/catalog"
)

type entry struct {
	pool      Pool
	createdAt time.Time
}

// Stat is a point-in-time snapshot of one cached pool.
type Stat struct {
	TenantID      string    `json:"tenant_id"`
	CreatedAt     time.Time `json:"created_at"`
	AcquiredConns int32     `json:"acquired_conns"`
	IdleConns     int32     `json:"idle_conns"`
	TotalConns    int32     `json:"total_conns"`
}

// Cache holds zero or one live pool per tenant id. Construct with New and
// share one instance per process; the zero value is not usable.
type Cache struct {
	catalog *catalog.Catalog
	factory Factory
	log     *slog.Logger

	mu      sync.RWMutex
	entries map[string]*entry

	// Per-tenant creation/eviction locks. Entries are never removed: the
	// map is bounded by the number of tenants the process has ever seen.
	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// Option configures a Cache.
type Option func(*Cache)

// WithFactory overrides the pool factory. Tests use this to build pools
// without a database.
func WithFactory(factory Factory) Option {
	return func(c *Cache) {
		if factory != nil {
			c.factory = factory
		}
	}
}

// WithLogger sets the cache's logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a pool cache resolving tenant records through cat. Without
// options it builds real pgx pools with default sizing.
func New(cat *catalog.Catalog, opts ...Option) *Cache {
	c := &Cache{
		catalog: cat,
		factory: NewPgxFactory(Defaults{}),
		log:     slog.Default(),
		entries: make(map[string]*entry),
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// tenantLock returns the mutex serializing creation and eviction for one
// tenant id.
func (c *Cache) tenantLock(tenantID string) *sync.Mutex {
	c.lockMu.Lock()
	defer c.lockMu.Unlock()

	l, ok := c.locks[tenantID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[tenantID] = l
	}
	return l
}

// GetOrCreate returns the live pool for a tenant, building it on first use
// from the tenant's catalog record. Returns catalog.ErrTenantNotFound,
// catalog.ErrTenantInactive, or ErrPoolCreationFailed as typed errors; none
// of them is ever downgraded to another tenant's pool.
func (c *Cache) GetOrCreate(ctx context.Context, tenantID string) (Pool, error) {
	// Fast path: a cached pool is returned without touching per-tenant
	// locks, so hot tenants never wait on another tenant's cold start.
	c.mu.RLock()
	if e, ok := c.entries[tenantID]; ok {
		c.mu.RUnlock()
		return e.pool, nil
	}
	c.mu.RUnlock()

	lock := c.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	// Another worker may have finished the cold start while we waited.
	c.mu.RLock()
	if e, ok := c.entries[tenantID]; ok {
		c.mu.RUnlock()
		return e.pool, nil
	}
	c.mu.RUnlock()

	rec, err := c.catalog.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !rec.Active {
		return nil, catalog.ErrTenantInactive
	}

	start := time.Now()
	pool, err := c.factory(ctx, *rec)
	if err != nil {
		if !errors.Is(err, ErrPoolCreationFailed) {
			err = errors.Join(ErrPoolCreationFailed, err)
		}
		c.log.ErrorContext(ctx, "tenant pool creation failed",
			slog.String("tenant_id", tenantID),
			slog.Any("error", err),
		)
		return nil, err
	}

	// Publish only after the pool is fully built and verified.
	c.mu.Lock()
	c.entries[tenantID] = &entry{pool: pool, createdAt: time.Now()}
	c.mu.Unlock()

	c.log.InfoContext(ctx, "tenant pool ready",
		slog.String("tenant_id", tenantID),
		slog.Int64("max_pool_size", int64(rec.MaxPoolSize)),
		slog.Duration("build_time", time.Since(start)),
	)
	return pool, nil
}

// Evict removes a tenant's pool from the cache and closes it, draining
// in-flight checkouts before returning. Evicting a tenant with no cached
// pool is a no-op. Eviction holds the tenant's creation lock, so a
// GetOrCreate racing with it always ends up with a fresh, fully open pool.
func (c *Cache) Evict(ctx context.Context, tenantID string) {
	lock := c.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.Lock()
	e, ok := c.entries[tenantID]
	if ok {
		delete(c.entries, tenantID)
	}
	c.mu.Unlock()

	if !ok {
		return
	}

	e.pool.Close()
	c.log.InfoContext(ctx, "tenant pool evicted",
		slog.String("tenant_id", tenantID),
		slog.Duration("pool_age", time.Since(e.createdAt)),
	)
}

// TenantIDs returns the tenant ids with a live cached pool, sorted.
func (c *Cache) TenantIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live cached pools.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of every cached pool. Connection counters are
// populated for pgx-backed pools and left zero for injected fakes.
func (c *Cache) Stats() []Stat {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Stat, 0, len(c.entries))
	for id, e := range c.entries {
		s := Stat{TenantID: id, CreatedAt: e.createdAt}
		if pool, ok := PgxPool(e.pool); ok {
			st := pool.Stat()
			s.AcquiredConns = st.AcquiredConns()
			s.IdleConns = st.IdleConns()
			s.TotalConns = st.TotalConns()
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TenantID < out[j].TenantID })
	return out
}

// Close evicts every cached pool. Called once at process shutdown.
func (c *Cache) Close() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]*entry)
	c.mu.Unlock()

	for _, e := range entries {
		e.pool.Close()
	}
}
