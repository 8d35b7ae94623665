package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"alice":   "alice",
		"a.b*c":   `a\.b\*c`,
		"100%":    `100\%`,
		"under_x": `under\_x`,
		`back\sl`: `back\\sl`,
		"[ab]+?":  `\[ab\]\+\?`,
	}
	for in, want := range cases {
		assert.Equal(t, want, EscapeLike(in), "input %q", in)
	}
}

func TestSearchAllMatchesMetaCharsLiterally(t *testing.T) {
	env := setupEnv(t)
	search := NewSearchService(env.userRepo, env.sessions)
	ctx := context.Background()

	env.seedUser(t, "a.b*c", "pw")
	env.seedUser(t, "abc", "pw")
	env.seedUser(t, "axbyc", "pw")

	// meta characters must not act as wildcards
	results, err := search.Search(ctx, "a.b*c", ScopeAll, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.b*c", results[0].Username)
}

func TestSearchAllSubstringAndCase(t *testing.T) {
	env := setupEnv(t)
	search := NewSearchService(env.userRepo, env.sessions)
	ctx := context.Background()

	env.seedUser(t, "Alice", "pw")
	env.seedUser(t, "malice", "pw")
	env.seedUser(t, "bob", "pw")

	results, err := search.Search(ctx, "lic", ScopeAll, "")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchAllExcludesRequester(t *testing.T) {
	env := setupEnv(t)
	search := NewSearchService(env.userRepo, env.sessions)
	ctx := context.Background()

	alice := env.seedUser(t, "alice", "pw")
	env.seedUser(t, "alicia", "pw")

	results, err := search.Search(ctx, "alic", ScopeAll, alice.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alicia", results[0].Username)
}

func TestSearchActiveSeesOnlyLiveSessions(t *testing.T) {
	env := setupEnv(t)
	search := NewSearchService(env.userRepo, env.sessions)
	ctx := context.Background()

	online := env.seedUser(t, "online_ann", "pw")
	offline := env.seedUser(t, "offline_ann", "pw")
	requester := env.seedUser(t, "ann_self", "pw")

	require.NoError(t, env.sessions.Put(ctx, online))
	require.NoError(t, env.sessions.Put(ctx, requester))
	_ = offline

	results, err := search.Search(ctx, "ann", ScopeActive, requester.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "online_ann", results[0].Username)
}

func TestSearchActiveDropsExpiredSessions(t *testing.T) {
	env := setupEnv(t)
	search := NewSearchService(env.userRepo, env.sessions)
	ctx := context.Background()

	user := env.seedUser(t, "fleeting", "pw")
	require.NoError(t, env.sessions.Put(ctx, user))

	env.srv.FastForward(2 * time.Hour)

	results, err := search.Search(ctx, "fleet", ScopeActive, "")
	require.NoError(t, err)
	assert.Empty(t, results)
}
