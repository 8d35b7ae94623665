package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialnet/internal/model"
)

func testView(id, username string) model.UserView {
	now := time.Now().Truncate(time.Second)
	return model.UserView{
		ID:            id,
		FullName:      "Test User",
		Username:      username,
		Email:         username + "@example.com",
		Role:          model.RoleUser,
		CreatedAt:     now,
		UpdatedAt:     now,
		ProfilePic:    "pic.png",
		Bio:           "bio",
		Gender:        model.GenderFemale,
		AccountStatus: model.AccountActive,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	_, rdb := setupRedis(t)
	ctx := context.Background()
	sessions := NewSessionStore(rdb, time.Hour)

	want := testView("u1", "alice")
	require.NoError(t, sessions.Put(ctx, want))

	got, ok, err := sessions.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Username, got.Username)
	assert.Equal(t, want.Email, got.Email)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, want.AccountStatus, got.AccountStatus)
}

func TestSessionHashNeverHoldsPassword(t *testing.T) {
	_, rdb := setupRedis(t)
	ctx := context.Background()
	sessions := NewSessionStore(rdb, time.Hour)

	require.NoError(t, sessions.Put(ctx, testView("u1", "alice")))

	raw, err := rdb.HGetAll(ctx, UserKey("u1")).Result()
	require.NoError(t, err)
	_, hasPassword := raw["password"]
	assert.False(t, hasPassword)
	_, hasHash := raw["passwordHash"]
	assert.False(t, hasHash)
}

func TestSessionExpiryAndDelete(t *testing.T) {
	srv, rdb := setupRedis(t)
	ctx := context.Background()
	sessions := NewSessionStore(rdb, time.Minute)

	require.NoError(t, sessions.Put(ctx, testView("u1", "alice")))

	srv.FastForward(2 * time.Minute)
	_, ok, err := sessions.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	// delete is idempotent
	require.NoError(t, sessions.Delete(ctx, "u1"))
	require.NoError(t, sessions.Delete(ctx, "u1"))
}

func TestSessionRenewExtendsTTL(t *testing.T) {
	srv, rdb := setupRedis(t)
	ctx := context.Background()
	sessions := NewSessionStore(rdb, time.Minute)

	require.NoError(t, sessions.Put(ctx, testView("u1", "alice")))
	srv.FastForward(45 * time.Second)
	require.NoError(t, sessions.Renew(ctx, "u1"))
	srv.FastForward(45 * time.Second)

	_, ok, err := sessions.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestForEachActiveWalksSessionsOnly(t *testing.T) {
	_, rdb := setupRedis(t)
	ctx := context.Background()
	sessions := NewSessionStore(rdb, time.Hour)

	require.NoError(t, sessions.Put(ctx, testView("u1", "alice")))
	require.NoError(t, sessions.Put(ctx, testView("u2", "bob")))
	// non-session keys sharing nothing with the pattern
	require.NoError(t, rdb.Set(ctx, "post:p1", "{}", 0).Err())

	seen := map[string]bool{}
	err := sessions.ForEachActive(ctx, func(view model.UserView) error {
		seen[view.Username] = true
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"alice": true, "bob": true}, seen)
}
