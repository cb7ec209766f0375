package poolcache

import "errors"

// ErrPoolCreationFailed is returned when a tenant's connection parameters
// are rejected or the target database is unreachable. The cache does not
// retry; retry policy belongs to the caller.
var ErrPoolCreationFailed = errors.New("tenant pool creation failed")
