package tenant

import (
	"log/slog"
	"net/http"
	"strings"
)

// Middleware returns HTTP middleware that establishes the tenant identity
// for one request: resolve the id, run the cheap validity tier, install it
// on the request context, and hand a clean slate to the handler chain.
//
// Clearing is structural: the id lives on the request context, which dies
// with the request on every exit path, so no deferred cleanup can be missed.
func Middleware(resolver Resolver, validator Validator, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		errorHandler: defaultErrorHandler,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := r.Context()

			// A unit of work must start with an empty tenant slot. An
			// inherited id means a prior unit of work skipped its clear;
			// trusting it would route this request to the wrong database.
			if leaked, ok := IDFromContext(ctx); ok {
				cfg.logger.ErrorContext(ctx, "tenant context leak detected at request entry",
					slog.String("leaked_tenant_id", leaked),
					slog.String("path", r.URL.Path),
					slog.Any("error", ErrContextLeak),
				)
				ctx = Cleared(ctx)
			}

			id, err := resolver.Resolve(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			// No id on the request: continue without tenancy. The router
			// substitutes the configured default tenant downstream.
			if id == "" {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if validator != nil && !validator.IsValidCheap(id) {
				cfg.errorHandler(w, r, ErrInvalidIdentifier)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithID(ctx, id)))
		})
	}
}

// RequireTenant returns middleware that rejects requests whose context
// carries no tenant id. Mount it on routes where the default-tenant
// fallback is not acceptable.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IDFromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
