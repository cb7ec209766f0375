package poolcache

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// warmUpParallelism bounds concurrent cold starts during warm-up so a large
// tenant fleet does not open every database at once on boot.
const warmUpParallelism = 8

// WarmUp pre-builds pools for the given tenant ids so the first real unit
// of work does not pay the cold-start latency. Failures are collected and
// returned joined; one broken tenant does not stop the others from warming.
func (c *Cache) WarmUp(ctx context.Context, tenantIDs []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(warmUpParallelism)

	errs := make([]error, len(tenantIDs))
	for i, id := range tenantIDs {
		i, id := i, id
		g.Go(func() error {
			if _, err := c.GetOrCreate(ctx, id); err != nil {
				errs[i] = err
			}
			// Errors are reported after all tenants were attempted.
			return nil
		})
	}
	_ = g.Wait()

	var joined error
	for _, err := range errs {
		if err != nil {
			joined = errors.Join(joined, err)
		}
	}
	return joined
}
