package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialnet/pkg/apperr"
	"github.com/d60-Lab/socialnet/pkg/logger"
)

// Loader assembles an aggregate from the primary store on a cache miss.
type Loader[V any] func(ctx context.Context) (V, error)

// Cache is a read-through cache for one kind of aggregate, JSON-encoded under
// <kind>:<id>. Concurrent misses for the same key are not deduplicated: each
// caller runs the loader. The loads are idempotent reads, so the only cost of
// a stampede is duplicate store round-trips.
type Cache[V any] struct {
	rdb  *redis.Client
	kind string
	ttl  time.Duration
}

func New[V any](rdb *redis.Client, kind string, ttl time.Duration) *Cache[V] {
	return &Cache[V]{rdb: rdb, kind: kind, ttl: ttl}
}

func (c *Cache[V]) key(id string) string { return c.kind + ":" + id }

// Get returns the cached value and whether it was present. A value that no
// longer decodes is treated as a miss.
func (c *Cache[V]) Get(ctx context.Context, id string) (V, bool, error) {
	var zero V
	data, err := c.rdb.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, false, nil
		}
		return zero, false, apperr.Upstream(err)
	}
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, false, nil
	}
	return v, true, nil
}

func (c *Cache[V]) Put(ctx context.Context, id string, v V) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, c.key(id), payload, c.ttl).Err(); err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

// GetOrLoad is the cache-aside read path: hit wins, miss runs the loader and
// repopulates. A failed repopulation does not fail the read; the value came
// from the source of truth and the next read will try the cache again.
func (c *Cache[V]) GetOrLoad(ctx context.Context, id string, loader Loader[V]) (V, error) {
	if v, ok, err := c.Get(ctx, id); err != nil {
		var zero V
		return zero, err
	} else if ok {
		return v, nil
	}
	v, err := loader(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	if err := c.Put(ctx, id, v); err != nil {
		logger.Warn("cache repopulate failed", zap.String("key", c.key(id)), zap.Error(err))
	}
	return v, nil
}

// Invalidate drops the aggregate so the next read rebuilds it. Used whenever
// an underlying relation changes instead of patching in place.
func (c *Cache[V]) Invalidate(ctx context.Context, id string) error {
	if err := c.rdb.Del(ctx, c.key(id)).Err(); err != nil {
		return apperr.Upstream(err)
	}
	return nil
}
