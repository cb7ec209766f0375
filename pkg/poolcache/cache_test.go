package poolcache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routegrid/tenancy/pkg/catalog"
	"github.com/routegrid/tenancy/pkg/poolcache"
)

// fakePool is a Factory product that records lifecycle calls.
type fakePool struct {
	tenantID string
	closed   atomic.Bool
	acquires atomic.Int64
}

func (p *fakePool) Acquire(ctx context.Context) (poolcache.Conn, error) {
	p.acquires.Add(1)
	return fakeConn{}, nil
}

func (p *fakePool) Close() { p.closed.Store(true) }

type fakeConn struct{}

func (fakeConn) Release() {}

// fakeFactory counts constructions per tenant and can inject latency or
// failures keyed by tenant id.
type fakeFactory struct {
	mu       sync.Mutex
	built    map[string]int
	delay    map[string]time.Duration
	failWith map[string]error
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		built:    make(map[string]int),
		delay:    make(map[string]time.Duration),
		failWith: make(map[string]error),
	}
}

func (f *fakeFactory) factory(ctx context.Context, rec catalog.Record) (poolcache.Pool, error) {
	f.mu.Lock()
	f.built[rec.ID]++
	delay := f.delay[rec.ID]
	failErr := f.failWith[rec.ID]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failErr != nil {
		return nil, failErr
	}
	return &fakePool{tenantID: rec.ID}, nil
}

func (f *fakeFactory) builds(tenantID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.built[tenantID]
}

func newTestCatalog(t *testing.T, tenantIDs ...string) *catalog.Catalog {
	t.Helper()

	store := catalog.NewMemoryStore()
	for _, id := range tenantIDs {
		require.NoError(t, store.Create(context.Background(), catalog.Record{
			ID:            id,
			ConnectionURL: "postgres://localhost:5432/routegrid_" + id,
			Active:        true,
		}))
	}
	return catalog.New(store, catalog.Record{
		ID:            "primary",
		ConnectionURL: "postgres://localhost:5432/routegrid_primary",
	})
}

func TestGetOrCreate(t *testing.T) {
	t.Parallel()

	t.Run("same handle on repeat lookups", func(t *testing.T) {
		t.Parallel()

		factory := newFakeFactory()
		cache := poolcache.New(newTestCatalog(t, "acme"), poolcache.WithFactory(factory.factory))
		t.Cleanup(cache.Close)

		first, err := cache.GetOrCreate(context.Background(), "acme")
		require.NoError(t, err)
		second, err := cache.GetOrCreate(context.Background(), "acme")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, factory.builds("acme"))
	})

	t.Run("concurrent cold start builds exactly one pool", func(t *testing.T) {
		t.Parallel()

		factory := newFakeFactory()
		factory.delay["acme"] = 20 * time.Millisecond
		cache := poolcache.New(newTestCatalog(t, "acme"), poolcache.WithFactory(factory.factory))
		t.Cleanup(cache.Close)

		const workers = 32
		pools := make([]poolcache.Pool, workers)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				pool, err := cache.GetOrCreate(context.Background(), "acme")
				assert.NoError(t, err)
				pools[i] = pool
			}()
		}
		wg.Wait()

		require.Equal(t, 1, factory.builds("acme"))
		for _, pool := range pools {
			assert.Same(t, pools[0], pool)
		}
	})

	t.Run("slow cold start for one tenant does not block another", func(t *testing.T) {
		t.Parallel()

		factory := newFakeFactory()
		factory.delay["slowpoke"] = 300 * time.Millisecond
		cache := poolcache.New(newTestCatalog(t, "slowpoke", "acme"), poolcache.WithFactory(factory.factory))
		t.Cleanup(cache.Close)

		slowStarted := make(chan struct{})
		slowDone := make(chan struct{})
		go func() {
			close(slowStarted)
			_, err := cache.GetOrCreate(context.Background(), "slowpoke")
			assert.NoError(t, err)
			close(slowDone)
		}()

		<-slowStarted
		start := time.Now()
		_, err := cache.GetOrCreate(context.Background(), "acme")
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 250*time.Millisecond,
			"cold start for acme must not wait for slowpoke's factory")
		<-slowDone
	})

	t.Run("unknown tenant is not cached", func(t *testing.T) {
		t.Parallel()

		factory := newFakeFactory()
		cache := poolcache.New(newTestCatalog(t), poolcache.WithFactory(factory.factory))
		t.Cleanup(cache.Close)

		_, err := cache.GetOrCreate(context.Background(), "ghost-tenant")
		assert.ErrorIs(t, err, catalog.ErrTenantNotFound)
		assert.Zero(t, cache.Len())
		assert.Zero(t, factory.builds("ghost-tenant"))
	})

	t.Run("inactive tenant is rejected", func(t *testing.T) {
		t.Parallel()

		store := catalog.NewMemoryStore()
		require.NoError(t, store.Create(context.Background(), catalog.Record{
			ID:            "dormant",
			ConnectionURL: "postgres://localhost:5432/routegrid_dormant",
			Active:        false,
		}))
		cat := catalog.New(store, catalog.Record{ID: "primary", ConnectionURL: "postgres://localhost/p"})

		factory := newFakeFactory()
		cache := poolcache.New(cat, poolcache.WithFactory(factory.factory))
		t.Cleanup(cache.Close)

		_, err := cache.GetOrCreate(context.Background(), "dormant")
		assert.ErrorIs(t, err, catalog.ErrTenantInactive)
		assert.Zero(t, factory.builds("dormant"))
	})

	t.Run("factory failure publishes nothing and retries later", func(t *testing.T) {
		t.Parallel()

		factory := newFakeFactory()
		factory.failWith["acme"] = errors.New("dial tcp: connection refused")
		cache := poolcache.New(newTestCatalog(t, "acme"), poolcache.WithFactory(factory.factory))
		t.Cleanup(cache.Close)

		_, err := cache.GetOrCreate(context.Background(), "acme")
		assert.ErrorIs(t, err, poolcache.ErrPoolCreationFailed)
		assert.Zero(t, cache.Len())

		// Once the database is reachable again the next lookup succeeds.
		factory.mu.Lock()
		delete(factory.failWith, "acme")
		factory.mu.Unlock()

		pool, err := cache.GetOrCreate(context.Background(), "acme")
		require.NoError(t, err)
		assert.NotNil(t, pool)
		assert.Equal(t, 2, factory.builds("acme"))
	})

	t.Run("canceled context aborts the cold start", func(t *testing.T) {
		t.Parallel()

		factory := newFakeFactory()
		factory.delay["acme"] = time.Second
		cache := poolcache.New(newTestCatalog(t, "acme"), poolcache.WithFactory(factory.factory))
		t.Cleanup(cache.Close)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := cache.GetOrCreate(ctx, "acme")
		require.Error(t, err)
		assert.Zero(t, cache.Len())
	})
}

func TestEvict(t *testing.T) {
	t.Parallel()

	t.Run("closes the old pool and yields a fresh handle", func(t *testing.T) {
		t.Parallel()

		factory := newFakeFactory()
		cache := poolcache.New(newTestCatalog(t, "acme"), poolcache.WithFactory(factory.factory))
		t.Cleanup(cache.Close)

		old, err := cache.GetOrCreate(context.Background(), "acme")
		require.NoError(t, err)

		cache.Evict(context.Background(), "acme")
		assert.True(t, old.(*fakePool).closed.Load())
		assert.Zero(t, cache.Len())

		fresh, err := cache.GetOrCreate(context.Background(), "acme")
		require.NoError(t, err)
		assert.NotSame(t, old, fresh)
		assert.Equal(t, 2, factory.builds("acme"))
	})

	t.Run("evicting an uncached tenant is a no-op", func(t *testing.T) {
		t.Parallel()

		cache := poolcache.New(newTestCatalog(t), poolcache.WithFactory(newFakeFactory().factory))
		t.Cleanup(cache.Close)

		cache.Evict(context.Background(), "never-seen")
		assert.Zero(t, cache.Len())
	})

	t.Run("eviction racing lookups never hands out a closed pool", func(t *testing.T) {
		t.Parallel()

		factory := newFakeFactory()
		cache := poolcache.New(newTestCatalog(t, "acme"), poolcache.WithFactory(factory.factory))
		t.Cleanup(cache.Close)

		_, err := cache.GetOrCreate(context.Background(), "acme")
		require.NoError(t, err)

		var wg sync.WaitGroup
		for worker := 0; worker < 8; worker++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for iter := 0; iter < 50; iter++ {
					pool, err := cache.GetOrCreate(context.Background(), "acme")
					if assert.NoError(t, err) {
						// The handle may be closed later by a racing evict,
						// but it must have been open when published.
						assert.NotNil(t, pool)
					}
				}
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for evictIter := 0; evictIter < 20; evictIter++ {
				cache.Evict(context.Background(), "acme")
			}
		}()
		wg.Wait()
	})
}

func TestTenantIDsAndStats(t *testing.T) {
	t.Parallel()

	factory := newFakeFactory()
	cache := poolcache.New(newTestCatalog(t, "zeta", "acme"), poolcache.WithFactory(factory.factory))
	t.Cleanup(cache.Close)

	ctx := context.Background()
	_, err := cache.GetOrCreate(ctx, "zeta")
	require.NoError(t, err)
	_, err = cache.GetOrCreate(ctx, "acme")
	require.NoError(t, err)

	assert.Equal(t, []string{"acme", "zeta"}, cache.TenantIDs())
	assert.Equal(t, 2, cache.Len())

	stats := cache.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, "acme", stats[0].TenantID)
	assert.False(t, stats[0].CreatedAt.IsZero())
}

func TestClose(t *testing.T) {
	t.Parallel()

	factory := newFakeFactory()
	cache := poolcache.New(newTestCatalog(t, "acme", "zeta"), poolcache.WithFactory(factory.factory))

	ctx := context.Background()
	a, err := cache.GetOrCreate(ctx, "acme")
	require.NoError(t, err)
	z, err := cache.GetOrCreate(ctx, "zeta")
	require.NoError(t, err)

	cache.Close()

	assert.True(t, a.(*fakePool).closed.Load())
	assert.True(t, z.(*fakePool).closed.Load())
	assert.Zero(t, cache.Len())
}

func TestWarmUp(t *testing.T) {
	t.Parallel()

	t.Run("builds every requested pool", func(t *testing.T) {
		t.Parallel()

		factory := newFakeFactory()
		cache := poolcache.New(newTestCatalog(t, "acme", "zeta"), poolcache.WithFactory(factory.factory))
		t.Cleanup(cache.Close)

		err := cache.WarmUp(context.Background(), []string{"acme", "zeta"})
		require.NoError(t, err)
		assert.Equal(t, 2, cache.Len())
	})

	t.Run("one broken tenant does not stop the rest", func(t *testing.T) {
		t.Parallel()

		factory := newFakeFactory()
		factory.failWith["broken"] = errors.New("auth failed")
		cache := poolcache.New(newTestCatalog(t, "acme", "broken"), poolcache.WithFactory(factory.factory))
		t.Cleanup(cache.Close)

		err := cache.WarmUp(context.Background(), []string{"acme", "broken"})
		assert.ErrorIs(t, err, poolcache.ErrPoolCreationFailed)
		assert.Equal(t, []string{"acme"}, cache.TenantIDs())
	})
}
