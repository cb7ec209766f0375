package catalog

import "time"

// Pool-sizing defaults applied when a registry row leaves the hints unset.
const (
	DefaultMaxPoolSize int32 = 10
	DefaultMinIdleSize int32 = 2
)

// Record is one tenant's registry entry: identity, connection parameters,
// and pool-sizing hints. The ID is globally unique and immutable; everything
// else may be mutated by admin operations (activate/deactivate, credential
// rotation).
type Record struct {
	ID            string    `json:"tenant_id"`
	DisplayName   string    `json:"display_name"`
	ConnectionURL string    `json:"connection_url"`
	Username      string    `json:"username"`
	Secret        string    `json:"-"`
	DriverKind    string    `json:"driver_kind"`
	MaxPoolSize   int32     `json:"max_pool_size"`
	MinIdleSize   int32     `json:"min_idle_size"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// Normalized returns a copy with unset pool-sizing hints replaced by the
// package defaults and an empty driver kind pinned to postgres.
func (r Record) Normalized() Record {
	if r.MaxPoolSize <= 0 {
		r.MaxPoolSize = DefaultMaxPoolSize
	}
	if r.MinIdleSize <= 0 {
		r.MinIdleSize = DefaultMinIdleSize
	}
	if r.DriverKind == "" {
		r.DriverKind = "postgres"
	}
	return r
}
