package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialnet/internal/model"
)

func TestFollowerStoreAddRemove(t *testing.T) {
	_, rdb := setupRedis(t)
	ctx := context.Background()
	store := NewFollowerStore(rdb, time.Hour)

	snap := model.FollowerSnapshot{ID: "u1", Username: "alice", ProfilePic: "a.png"}
	require.NoError(t, store.Add(ctx, "u2", snap))

	snaps, err := store.All(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, snap, snaps[0])

	require.NoError(t, store.Remove(ctx, "u2", "u1"))
	snaps, err = store.All(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, snaps)

	// removal is idempotent
	require.NoError(t, store.Remove(ctx, "u2", "u1"))
}

func TestFollowerStorePagedIndex(t *testing.T) {
	_, rdb := setupRedis(t)
	ctx := context.Background()
	store := NewFollowerStore(rdb, time.Hour)

	for i := 0; i < 5; i++ {
		snap := model.FollowerSnapshot{ID: fmt.Sprintf("u%d", i), Username: fmt.Sprintf("user%d", i)}
		require.NoError(t, store.Add(ctx, "star", snap))
	}

	// newest first
	ids, err := store.PageIDs(ctx, "star", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"u4", "u3"}, ids)

	ids, err = store.PageIDs(ctx, "star", 4, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"u0"}, ids)
}

func TestPatchIdentityAcrossCollections(t *testing.T) {
	_, rdb := setupRedis(t)
	ctx := context.Background()
	store := NewFollowerStore(rdb, time.Hour)

	// u1 follows N users, plus unrelated followers that must stay untouched
	const n = 25
	target := model.FollowerSnapshot{ID: "u1", Username: "alice", ProfilePic: "old.png"}
	other := model.FollowerSnapshot{ID: "u9", Username: "carol", ProfilePic: "c.png"}
	for i := 0; i < n; i++ {
		followed := fmt.Sprintf("followed%d", i)
		require.NoError(t, store.Add(ctx, followed, target))
		require.NoError(t, store.Add(ctx, followed, other))
	}

	patched, err := store.PatchIdentity(ctx, model.UserView{ID: "u1", Username: "alicia", ProfilePic: "new.png"})
	require.NoError(t, err)
	assert.Equal(t, n, patched)

	for i := 0; i < n; i++ {
		snaps, err := store.All(ctx, fmt.Sprintf("followed%d", i))
		require.NoError(t, err)
		byID := map[string]model.FollowerSnapshot{}
		for _, s := range snaps {
			byID[s.ID] = s
		}
		assert.Equal(t, "alicia", byID["u1"].Username)
		assert.Equal(t, "new.png", byID["u1"].ProfilePic)
		assert.Equal(t, "carol", byID["u9"].Username)
	}
}

func TestPatchIdentitySkipsIndexLists(t *testing.T) {
	_, rdb := setupRedis(t)
	ctx := context.Background()
	store := NewFollowerStore(rdb, time.Hour)

	// Add puts both the hash entry and the index list under followers:*
	require.NoError(t, store.Add(ctx, "u2", model.FollowerSnapshot{ID: "u1", Username: "alice"}))

	// the scan must not trip over the list key
	patched, err := store.PatchIdentity(ctx, model.UserView{ID: "u1", Username: "alicia"})
	require.NoError(t, err)
	assert.Equal(t, 1, patched)
}

func TestWriteAllReplacesCollection(t *testing.T) {
	_, rdb := setupRedis(t)
	ctx := context.Background()
	store := NewFollowerStore(rdb, time.Hour)

	require.NoError(t, store.Add(ctx, "u2", model.FollowerSnapshot{ID: "stale", Username: "stale"}))

	rebuilt := []model.FollowerSnapshot{
		{ID: "u1", Username: "alice"},
		{ID: "u3", Username: "bob"},
	}
	require.NoError(t, store.WriteAll(ctx, "u2", rebuilt))

	snaps, err := store.All(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
	ids, err := store.PageIDs(ctx, "u2", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3"}, ids)
}
