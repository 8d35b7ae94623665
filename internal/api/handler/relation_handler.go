package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialnet/internal/middleware"
	"github.com/d60-Lab/socialnet/pkg/response"
)

// Follow 关注开关：未关注则关注，已关注则取消
// @Summary 关注/取消关注
// @Tags 关系链
// @Produce json
// @Param id path string true "目标用户ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/users/follow/{id} [put]
func (h *Handler) Follow(c *gin.Context) {
	view, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "login required")
		return
	}
	outcome, err := h.relService.Follow(c.Request.Context(), view.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"outcome": outcome})
}

// Followers 查询当前用户的粉丝（快照集合，冷则回源重建）
// @Summary 粉丝列表
// @Tags 关系链
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Router /api/v1/users/followers [get]
func (h *Handler) Followers(c *gin.Context) {
	view, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "login required")
		return
	}
	if c.Query("page") == "" {
		followers, err := h.relService.ListFollowers(c.Request.Context(), view.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, gin.H{"followers": followers})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	followers, err := h.relService.ListFollowersPage(c.Request.Context(), view.ID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "followers": followers})
}
