package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
	"github.com/d60-Lab/socialnet/pkg/mail"
)

type testEnv struct {
	db         *gorm.DB
	srv        *miniredis.Miniredis
	rdb        *redis.Client
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	postRepo   repository.PostRepository
	sessions   *cache.SessionStore
	followers  *cache.FollowerStore
	posts      *cache.Cache[model.PostView]
	views      *cache.ViewCounter
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.ProfileInfo{}, &model.Follow{},
		&model.Post{}, &model.Comment{}, &model.Like{},
	))

	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return &testEnv{
		db:         db,
		srv:        srv,
		rdb:        rdb,
		userRepo:   repository.NewUserRepository(db),
		followRepo: repository.NewFollowRepository(db),
		postRepo:   repository.NewPostRepository(db),
		sessions:   cache.NewSessionStore(rdb, time.Hour),
		followers:  cache.NewFollowerStore(rdb, time.Hour),
		posts:      cache.New[model.PostView](rdb, cache.KindPost, time.Hour),
		views:      cache.NewViewCounter(rdb),
	}
}

func (e *testEnv) authConfig() AuthConfig {
	return AuthConfig{
		AccessSecret:     "access-secret",
		RefreshSecret:    "refresh-secret",
		ActivationSecret: "activation-secret",
		AccessTTL:        time.Hour,
		RefreshTTL:       7 * 24 * time.Hour,
		ActivationTTL:    15 * time.Minute,
	}
}

func (e *testEnv) authService() AuthService {
	return NewAuthService(e.authConfig(), e.userRepo, e.sessions, mail.NewNoop())
}

// seedUser inserts a user+profile and returns the flattened view.
func (e *testEnv) seedUser(t *testing.T, username, password string) model.UserView {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{
		ID:       uuid.New().String(),
		FullName: "Seed " + username,
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		Role:     model.RoleUser,
	}
	require.NoError(t, e.userRepo.Create(context.Background(), user))
	require.NoError(t, e.userRepo.SaveProfile(context.Background(), &model.ProfileInfo{
		UserID:        user.ID,
		ProfilePic:    username + ".png",
		AccountStatus: model.AccountActive,
	}))
	view, err := e.userRepo.FindView(context.Background(), user.ID)
	require.NoError(t, err)
	return view
}
