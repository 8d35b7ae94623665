package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/service"
	"github.com/d60-Lab/socialnet/pkg/response"
)

const userKey = "currentUser"

// Auth validates the access token from cookie or Authorization header and
// stashes the session's UserView on the context. No valid session, no access.
func Auth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			if h := c.GetHeader("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
				token = h[7:]
			}
		}
		if token == "" {
			response.Unauthorized(c, "login required")
			c.Abort()
			return
		}
		view, err := auth.ValidateAccess(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(userKey, view)
		c.Next()
	}
}

// CurrentUser returns the authenticated user's view set by Auth.
func CurrentUser(c *gin.Context) (model.UserView, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return model.UserView{}, false
	}
	view, ok := v.(model.UserView)
	return view, ok
}

// RequireRoles guards admin-only routes.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, ok := CurrentUser(c)
		if !ok {
			response.Unauthorized(c, "login required")
			c.Abort()
			return
		}
		for _, role := range roles {
			if view.Role == role {
				c.Next()
				return
			}
		}
		response.Unauthorized(c, "insufficient role")
		c.Abort()
	}
}
