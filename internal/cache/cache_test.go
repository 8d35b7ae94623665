package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialnet/internal/model"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return srv, rdb
}

func TestCacheGetOrLoad(t *testing.T) {
	_, rdb := setupRedis(t)
	ctx := context.Background()
	c := New[model.PostView](rdb, KindPost, time.Hour)

	loads := 0
	loader := func(ctx context.Context) (model.PostView, error) {
		loads++
		return model.PostView{ID: "p1", Text: "hello"}, nil
	}

	v, err := c.GetOrLoad(ctx, "p1", loader)
	require.NoError(t, err)
	assert.Equal(t, "hello", v.Text)
	assert.Equal(t, 1, loads)

	// second read is a hit, loader stays cold
	v, err = c.GetOrLoad(ctx, "p1", loader)
	require.NoError(t, err)
	assert.Equal(t, "hello", v.Text)
	assert.Equal(t, 1, loads)
}

func TestCacheInvalidateForcesReload(t *testing.T) {
	_, rdb := setupRedis(t)
	ctx := context.Background()
	c := New[model.PostView](rdb, KindPost, time.Hour)

	require.NoError(t, c.Put(ctx, "p1", model.PostView{ID: "p1", Text: "v1"}))
	exists, err := rdb.Exists(ctx, PostKey("p1")).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
	require.NoError(t, c.Invalidate(ctx, "p1"))

	_, ok, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := c.GetOrLoad(ctx, "p1", func(ctx context.Context) (model.PostView, error) {
		return model.PostView{ID: "p1", Text: "v2"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "v2", v.Text)
}

func TestCacheTTLExpiry(t *testing.T) {
	srv, rdb := setupRedis(t)
	ctx := context.Background()
	c := New[model.PostView](rdb, KindPost, time.Minute)

	require.NoError(t, c.Put(ctx, "p1", model.PostView{ID: "p1"}))
	srv.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheLoaderErrorPropagates(t *testing.T) {
	_, rdb := setupRedis(t)
	boom := errors.New("store down")
	c := New[model.PostView](rdb, KindPost, time.Hour)

	_, err := c.GetOrLoad(context.Background(), "p1", func(ctx context.Context) (model.PostView, error) {
		return model.PostView{}, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestViewCounterMonotonic(t *testing.T) {
	_, rdb := setupRedis(t)
	ctx := context.Background()
	views := NewViewCounter(rdb)

	n, err := views.Count(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	prev := int64(0)
	for i := 0; i < 5; i++ {
		n, err := views.Increment(ctx, "p1")
		require.NoError(t, err)
		assert.Greater(t, n, prev)
		prev = n
	}
	assert.Equal(t, int64(5), prev)

	// other posts are independent members of the same sorted set
	n, err = views.Increment(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
