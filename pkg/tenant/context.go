package tenant

import (
	"context"
	"log/slog"
)

// contextKey is a private type to keep the tenant slot from colliding with
// other context values.
type contextKey struct{}

// WithID returns a context carrying the tenant id for one unit of work.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IDFromContext returns the tenant id of the current unit of work.
// Returns "", false when no tenant is set or the slot was cleared.
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// MustID returns the tenant id or panics when none is set. Use only in
// handlers that cannot function without tenancy.
func MustID(ctx context.Context) string {
	id, ok := IDFromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return id
}

// Cleared returns a context whose tenant slot is empty, shadowing any id set
// further up the chain. Boundaries use it to hand a clean slate to the next
// unit of work sharing the same parent context.
func Cleared(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, "")
}

// RunScoped runs fn with the tenant id applied for exactly the duration of
// the call. The caller's context is never mutated, so the id cannot outlive
// fn, including when fn panics. Intended for background jobs that enter the
// process outside the HTTP boundary.
func RunScoped(ctx context.Context, id string, fn func(context.Context) error) error {
	if id == "" {
		return ErrInvalidIdentifier
	}
	return fn(WithID(ctx, id))
}

// LoggerExtractor returns a context extractor for the logger factory that
// attaches the current tenant id to every log record.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id), true
		}
		return slog.Attr{}, false
	}
}
