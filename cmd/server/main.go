package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialnet/internal/api"
	"github.com/d60-Lab/socialnet/internal/api/handler"
	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/config"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
	"github.com/d60-Lab/socialnet/internal/service"
	"github.com/d60-Lab/socialnet/pkg/logger"
	"github.com/d60-Lab/socialnet/pkg/mail"
	"github.com/d60-Lab/socialnet/pkg/tracing"
)

// @title socialnet API
// @version 1.0
// @description Social network backend: sessions, follow graph, cached aggregates.
// @BasePath /api/v1
func main() {
	cfg, err := config.Load(os.Getenv("SOCIALNET_CONFIG_DIR"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing.Endpoint, "socialnet")
	if err != nil {
		logger.Fatal("init tracing", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(ctx) }()

	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("open postgres", zap.Error(err))
	}
	if err := db.AutoMigrate(
		&model.User{}, &model.ProfileInfo{}, &model.Follow{},
		&model.Post{}, &model.Comment{}, &model.Like{},
	); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("ping redis", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)

	sessions := cache.NewSessionStore(rdb, cfg.Auth.RefreshTTL)
	followers := cache.NewFollowerStore(rdb, cfg.Cache.SnapshotTTL)
	postCache := cache.New[model.PostView](rdb, cache.KindPost, cfg.Cache.PostTTL)
	views := cache.NewViewCounter(rdb)

	var mailer mail.Sender = mail.NewNoop()
	if cfg.Mail.SendgridKey != "" {
		mailer = mail.NewSendgrid(cfg.Mail.SendgridKey, cfg.Mail.FromName, cfg.Mail.FromAddr)
	}

	propagator := service.NewIdentityPropagator(followers, 0)
	stopPropagator := propagator.Start(2)

	authService := service.NewAuthService(service.AuthConfig{
		AccessSecret:     cfg.Auth.AccessSecret,
		RefreshSecret:    cfg.Auth.RefreshSecret,
		ActivationSecret: cfg.Auth.ActivationSecret,
		AccessTTL:        cfg.Auth.AccessTTL,
		RefreshTTL:       cfg.Auth.RefreshTTL,
		ActivationTTL:    cfg.Auth.ActivationTTL,
	}, userRepo, sessions, mailer)
	relService := service.NewRelationshipService(followRepo, userRepo, followers, propagator)
	userService := service.NewUserService(userRepo, followRepo, sessions, relService)
	searchService := service.NewSearchService(userRepo, sessions)
	postService := service.NewPostService(postRepo, postCache, views)

	h := handler.New(authService, userService, relService, searchService, postService, propagator)
	r := api.NewRouter(cfg, h, authService)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}
	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := stopPropagator(shutdownCtx); err != nil {
		logger.Error("propagator shutdown", zap.Error(err))
	}
	_ = rdb.Close()
}
