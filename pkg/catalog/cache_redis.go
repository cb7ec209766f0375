package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "tenancy:catalog:"

// redisRecordCache stores registry records in Redis so multiple routing
// processes share one last-known-good view of the catalog. Record marshals
// without its secret field, so credentials never reach the shared cache.
// That is also why FindByID never serves connection parameters from here.
type redisRecordCache struct {
	client *redis.Client
}

// NewRedisRecordCache creates a RecordCache backed by the given Redis
// client. The client is owned by the caller; Close here does not close it.
func NewRedisRecordCache(client *redis.Client) RecordCache {
	return &redisRecordCache{client: client}
}

func (c *redisRecordCache) Get(ctx context.Context, id string) (*Record, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		return nil, false
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

func (c *redisRecordCache) Set(ctx context.Context, rec *Record, ttl time.Duration) {
	if rec == nil || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	// Best effort: a failed cache write only narrows outage tolerance.
	_ = c.client.Set(ctx, redisKeyPrefix+rec.ID, raw, ttl).Err()
}

func (c *redisRecordCache) Delete(ctx context.Context, id string) {
	_ = c.client.Del(ctx, redisKeyPrefix+id).Err()
}

func (c *redisRecordCache) Close() error {
	return nil
}
