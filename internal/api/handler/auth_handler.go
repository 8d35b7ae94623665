package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialnet/internal/middleware"
	"github.com/d60-Lab/socialnet/internal/service"
	"github.com/d60-Lab/socialnet/pkg/response"
)

type registerRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=8"`
}

type verifyRequest struct {
	ActivationToken string `json:"activation_token" binding:"required"`
	ActivationCode  string `json:"activation_code" binding:"required"`
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// Register 注册账号（发送激活码）
// @Summary 注册账号
// @Tags auth
// @Accept json
// @Produce json
// @Param request body registerRequest true "registration"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"activation_token": token, "message": "please check your email"})
}

// VerifyAccount 校验激活码并落库
// @Summary 激活账号
// @Tags auth
// @Accept json
// @Produce json
// @Param request body verifyRequest true "activation"
// @Success 200 {object} response.Response
// @Router /api/v1/auth/verify [post]
func (h *Handler) VerifyAccount(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.authService.VerifyAccount(c.Request.Context(), req.ActivationToken, req.ActivationCode); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "you can login now"})
}

// Login 登录，签发 access/refresh 并写入会话缓存
// @Summary 登录
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "credentials"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	pair, view, err := h.authService.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.setTokenCookies(c, pair.AccessToken, pair.RefreshToken)
	response.Success(c, gin.H{"user": view, "access_token": pair.AccessToken})
}

// Refresh 用 refresh token 换新 access token 并续期会话
// @Summary 刷新令牌
// @Tags auth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	token, err := c.Cookie("refresh_token")
	if err != nil || token == "" {
		response.Unauthorized(c, "refresh token required")
		return
	}
	access, _, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.setTokenCookies(c, access, token)
	response.Success(c, gin.H{"access_token": access})
}

// Logout 注销：删除会话缓存
// @Summary 注销
// @Tags auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/auth/logout [get]
func (h *Handler) Logout(c *gin.Context) {
	view, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "login required")
		return
	}
	if err := h.authService.Revoke(c.Request.Context(), view.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.SetCookie("access_token", "", -1, "/", "", false, true)
	c.SetCookie("refresh_token", "", -1, "/", "", false, true)
	response.Success(c, gin.H{"message": "logged out"})
}

// ChangePassword 修改密码（校验旧密码，发送通知邮件）
// @Summary 修改密码
// @Tags user
// @Accept json
// @Produce json
// @Param request body changePasswordRequest true "passwords"
// @Success 200 {object} response.Response
// @Router /api/v1/users/update/password [put]
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "login required")
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), view.ID, req.OldPassword, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "password has been updated"})
}

func (h *Handler) setTokenCookies(c *gin.Context, access, refresh string) {
	c.SetCookie("access_token", access, 3600, "/", "", false, true)
	c.SetCookie("refresh_token", refresh, 7*24*3600, "/", "", false, true)
}
