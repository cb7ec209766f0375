package tenant

import "net/http"

// DefaultHeader is the header the middleware reads the tenant id from unless
// configured otherwise.
const DefaultHeader = "X-Tenant-ID"

// Resolver extracts a tenant identifier from an inbound request.
// An empty result means the request carries no tenant id; that is not an
// error; downstream routing substitutes the configured default tenant.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// HeaderResolver reads the tenant id from an HTTP header.
type HeaderResolver struct {
	// Header is the name of the header to read.
	Header string
}

// NewHeaderResolver creates a resolver for the given header name,
// falling back to DefaultHeader when empty.
func NewHeaderResolver(header string) *HeaderResolver {
	if header == "" {
		header = DefaultHeader
	}
	return &HeaderResolver{Header: header}
}

// Resolve returns the header value verbatim; shape validation happens later.
func (h *HeaderResolver) Resolve(r *http.Request) (string, error) {
	return r.Header.Get(h.Header), nil
}

// ResolverFunc adapts an ordinary function to the Resolver interface.
type ResolverFunc func(r *http.Request) (string, error)

// Resolve calls the function.
func (f ResolverFunc) Resolve(r *http.Request) (string, error) {
	return f(r)
}
