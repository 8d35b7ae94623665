package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialnet/pkg/apperr"
)

func newUserService(env *testEnv, propagator *IdentityPropagator) UserService {
	rel := NewRelationshipService(env.followRepo, env.userRepo, env.followers, propagator)
	return NewUserService(env.userRepo, env.followRepo, env.sessions, rel)
}

func TestProfileWithCounts(t *testing.T) {
	env := setupEnv(t)
	users := newUserService(env, nil)
	rel := newRelService(env, nil)
	ctx := context.Background()

	alice := env.seedUser(t, "alice", "pw")
	bob := env.seedUser(t, "bob", "pw")
	carol := env.seedUser(t, "carol", "pw")

	_, err := rel.Follow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = rel.Follow(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	_, err = rel.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	result, err := users.Profile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Profile.Username)
	assert.Equal(t, int64(2), result.Followers)
	assert.Equal(t, int64(1), result.Following)
}

func TestProfileUnknownUser(t *testing.T) {
	env := setupEnv(t)
	users := newUserService(env, nil)

	_, err := users.Profile(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateAccountFillsBlanksFromCurrent(t *testing.T) {
	env := setupEnv(t)
	users := newUserService(env, nil)
	ctx := context.Background()

	alice := env.seedUser(t, "alice", "pw")
	view, err := users.UpdateAccount(ctx, alice.ID, AccountUpdate{Username: "alicia"})
	require.NoError(t, err)
	assert.Equal(t, "alicia", view.Username)
	assert.Equal(t, alice.FullName, view.FullName)
	assert.Equal(t, alice.Email, view.Email)
}

func TestUpdateAccountRejectsTakenIdentity(t *testing.T) {
	env := setupEnv(t)
	users := newUserService(env, nil)
	ctx := context.Background()

	alice := env.seedUser(t, "alice", "pw")
	env.seedUser(t, "bob", "pw")

	_, err := users.UpdateAccount(ctx, alice.ID, AccountUpdate{Username: "bob"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = users.UpdateAccount(ctx, alice.ID, AccountUpdate{Email: "bob@example.com"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// nothing changed in the store
	current, err := env.userRepo.FindView(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", current.Username)
}

func TestUpdateWritesThroughLiveSession(t *testing.T) {
	env := setupEnv(t)
	users := newUserService(env, nil)
	ctx := context.Background()

	alice := env.seedUser(t, "alice", "pw")
	require.NoError(t, env.sessions.Put(ctx, alice))

	_, err := users.UpdateAccount(ctx, alice.ID, AccountUpdate{Username: "alicia"})
	require.NoError(t, err)

	cached, ok, err := env.sessions.Get(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alicia", cached.Username)
}

func TestUpdateDoesNotResurrectSession(t *testing.T) {
	env := setupEnv(t)
	users := newUserService(env, nil)
	ctx := context.Background()

	alice := env.seedUser(t, "alice", "pw")
	// no session stored: alice is logged out
	_, err := users.UpdateAccount(ctx, alice.ID, AccountUpdate{Username: "alicia"})
	require.NoError(t, err)

	_, ok, err := env.sessions.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateProfileCreatesRowOnFirstUse(t *testing.T) {
	env := setupEnv(t)
	users := newUserService(env, nil)
	ctx := context.Background()

	alice := env.seedUser(t, "alice", "pw")
	view, err := users.UpdateProfile(ctx, alice.ID, ProfileUpdate{Bio: "hello", Gender: "female"})
	require.NoError(t, err)
	assert.Equal(t, "hello", view.Bio)
	// untouched fields survive
	assert.Equal(t, "alice.png", view.ProfilePic)
}

func TestAvatarChangePatchesFollowerSnapshots(t *testing.T) {
	env := setupEnv(t)
	propagator := NewIdentityPropagator(env.followers, 16)
	stop := propagator.Start(1)
	defer func() { _ = stop(context.Background()) }()

	users := newUserService(env, propagator)
	rel := newRelService(env, propagator)
	ctx := context.Background()

	alice := env.seedUser(t, "alice", "pw")
	bob := env.seedUser(t, "bob", "pw")
	_, err := rel.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = users.UpdateProfile(ctx, alice.ID, ProfileUpdate{ProfilePic: "fresh.png"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snaps, err := env.followers.All(ctx, bob.ID)
		if err != nil || len(snaps) != 1 {
			return false
		}
		return snaps[0].ProfilePic == "fresh.png"
	}, 3*time.Second, 20*time.Millisecond)
}
