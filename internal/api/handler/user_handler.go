package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialnet/internal/middleware"
	"github.com/d60-Lab/socialnet/internal/service"
	"github.com/d60-Lab/socialnet/pkg/response"
)

type accountUpdateRequest struct {
	FullName string `json:"full_name"`
	Username string `json:"username" binding:"omitempty,min=3,max=32"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type profileUpdateRequest struct {
	ProfilePic string `json:"profile_pic"`
	Bio        string `json:"bio" binding:"omitempty,max=500"`
	Gender     string `json:"gender" binding:"omitempty,gender"`
}

// Profile 当前用户资料与关注数
// @Summary 当前用户资料
// @Tags user
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/users/profile [get]
func (h *Handler) Profile(c *gin.Context) {
	view, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "login required")
		return
	}
	result, err := h.userService.Profile(c.Request.Context(), view.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateAccount 修改账号信息；用户名变化会触发粉丝快照异步扇出
// @Summary 修改账号信息
// @Tags user
// @Accept json
// @Produce json
// @Param request body accountUpdateRequest true "fields"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/users/update [put]
func (h *Handler) UpdateAccount(c *gin.Context) {
	var req accountUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "login required")
		return
	}
	updated, err := h.userService.UpdateAccount(c.Request.Context(), view.ID, service.AccountUpdate{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, updated)
}

// UpdateProfile 修改头像/简介/性别
// @Summary 修改资料
// @Tags user
// @Accept json
// @Produce json
// @Param request body profileUpdateRequest true "fields"
// @Success 200 {object} response.Response
// @Router /api/v1/users/update/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "login required")
		return
	}
	updated, err := h.userService.UpdateProfile(c.Request.Context(), view.ID, service.ProfileUpdate{
		ProfilePic: req.ProfilePic,
		Bio:        req.Bio,
		Gender:     req.Gender,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, updated)
}

// Search 用户名子串搜索
// @Summary 搜索用户
// @Tags user
// @Produce json
// @Param query path string true "substring"
// @Param active query string false "OK 时只搜在线会话"
// @Success 200 {object} response.Response
// @Router /api/v1/users/search/{query} [get]
func (h *Handler) Search(c *gin.Context) {
	view, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "login required")
		return
	}
	scope := service.ScopeAll
	if c.Query("active") == "OK" {
		scope = service.ScopeActive
	}
	users, err := h.searchService.Search(c.Request.Context(), c.Param("query"), scope, view.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"users": users})
}
