package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/d60-Lab/socialnet/docs"
	"github.com/d60-Lab/socialnet/internal/api/handler"
	"github.com/d60-Lab/socialnet/internal/config"
	"github.com/d60-Lab/socialnet/internal/middleware"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/service"
)

// NewRouter assembles middlewares and the versioned route tree.
func NewRouter(cfg *config.Config, h *handler.Handler, auth service.AuthService) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	registerValidations()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(otelgin.Middleware("socialnet"))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/verify", h.VerifyAccount)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.GET("/logout", middleware.Auth(auth), h.Logout)
	}

	users := v1.Group("/users", middleware.Auth(auth))
	{
		users.GET("/profile", h.Profile)
		users.GET("/search/:query", h.Search)
		users.GET("/followers", h.Followers)
		users.PUT("/follow/:id", h.Follow)
		users.PUT("/update", h.UpdateAccount)
		users.PUT("/update/profile", h.UpdateProfile)
		users.PUT("/update/password", h.ChangePassword)
	}

	admin := v1.Group("/admin", middleware.Auth(auth), middleware.RequireRoles(model.RoleAdmin))
	{
		admin.GET("/fanout", h.FanoutStatus)
	}

	posts := v1.Group("/posts", middleware.Auth(auth))
	{
		posts.POST("", h.CreatePost)
		posts.GET("", h.ListPosts)
		posts.GET("/:id", h.GetPost)
		posts.DELETE("/:id", h.DeletePost)
		posts.PUT("/like/:id", h.LikePost)
		posts.POST("/comment/:id", h.CommentPost)
		posts.POST("/reply/:id/:comment_id", h.ReplyComment)
	}

	return r
}

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == model.GenderMale || s == model.GenderFemale
		})
	}
}
