package tenant_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routegrid/tenancy/pkg/tenant"
)

// allowAll admits every id; rejectAll admits none.
type allowAll struct{}

func (allowAll) IsValidCheap(id string) bool { return true }

type rejectAll struct{}

func (rejectAll) IsValidCheap(id string) bool { return false }

func newTenantEcho(t *testing.T, got *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := tenant.IDFromContext(r.Context())
		*got = id
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("installs tenant id from header", func(t *testing.T) {
		t.Parallel()

		var got string
		mw := tenant.Middleware(tenant.NewHeaderResolver(""), allowAll{})
		srv := mw(newTenantEcho(t, &got))

		req := httptest.NewRequest(http.MethodGet, "/buses", nil)
		req.Header.Set(tenant.DefaultHeader, "acme")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "acme", got)
	})

	t.Run("missing header continues without tenant", func(t *testing.T) {
		t.Parallel()

		var got string
		mw := tenant.Middleware(tenant.NewHeaderResolver(""), allowAll{})
		srv := mw(newTenantEcho(t, &got))

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/buses", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, got)
	})

	t.Run("rejects invalid tenant id before handler runs", func(t *testing.T) {
		t.Parallel()

		mw := tenant.Middleware(tenant.NewHeaderResolver(""), rejectAll{})
		srv := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run for invalid tenant")
		}))

		req := httptest.NewRequest(http.MethodGet, "/buses", nil)
		req.Header.Set(tenant.DefaultHeader, "Not A Tenant!")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("skip paths bypass resolution", func(t *testing.T) {
		t.Parallel()

		var got string
		mw := tenant.Middleware(tenant.NewHeaderResolver(""), rejectAll{},
			tenant.WithSkipPaths([]string{"/health"}),
		)
		srv := mw(newTenantEcho(t, &got))

		req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
		req.Header.Set(tenant.DefaultHeader, "whatever")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, got)
	})

	t.Run("leaked tenant id is logged and discarded", func(t *testing.T) {
		t.Parallel()

		var logged bytes.Buffer
		log := slog.New(slog.NewTextHandler(&logged, nil))

		var got string
		mw := tenant.Middleware(tenant.NewHeaderResolver(""), allowAll{}, tenant.WithLogger(log))
		srv := mw(newTenantEcho(t, &got))

		// Simulate a pipeline bug: the context already carries a tenant
		// when the boundary middleware runs.
		req := httptest.NewRequest(http.MethodGet, "/buses", nil)
		req = req.WithContext(tenant.WithID(req.Context(), "stale-tenant"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, got, "leaked id must not reach the handler")
		assert.Contains(t, logged.String(), "stale-tenant")
		assert.Contains(t, logged.String(), "leak")
	})

	t.Run("leaked id never wins over the request header", func(t *testing.T) {
		t.Parallel()

		var got string
		mw := tenant.Middleware(tenant.NewHeaderResolver(""), allowAll{},
			tenant.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		)
		srv := mw(newTenantEcho(t, &got))

		req := httptest.NewRequest(http.MethodGet, "/buses", nil)
		req.Header.Set(tenant.DefaultHeader, "acme")
		req = req.WithContext(tenant.WithID(req.Context(), "stale-tenant"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, "acme", got)
	})

	t.Run("custom error handler is used", func(t *testing.T) {
		t.Parallel()

		mw := tenant.Middleware(tenant.NewHeaderResolver(""), rejectAll{},
			tenant.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
				require.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
				w.WriteHeader(http.StatusTeapot)
			}),
		)
		srv := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/buses", nil)
		req.Header.Set(tenant.DefaultHeader, "nope")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	t.Run("passes requests with a tenant", func(t *testing.T) {
		t.Parallel()

		srv := tenant.RequireTenant(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/buses", nil)
		req = req.WithContext(tenant.WithID(req.Context(), "acme"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects requests without a tenant", func(t *testing.T) {
		t.Parallel()

		srv := tenant.RequireTenant(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/buses", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
