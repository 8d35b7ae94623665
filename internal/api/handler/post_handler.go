package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialnet/internal/middleware"
	"github.com/d60-Lab/socialnet/pkg/response"
)

type createPostRequest struct {
	Text  string `json:"text" binding:"required,max=5000"`
	Image string `json:"image"`
}

type commentRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// CreatePost 发布帖子并预热聚合缓存
// @Summary 发布帖子
// @Tags post
// @Accept json
// @Produce json
// @Param request body createPostRequest true "post"
// @Success 200 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "login required")
		return
	}
	post, err := h.postService.Create(c.Request.Context(), view.ID, req.Text, req.Image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// GetPost 读取单帖：先计一次浏览，再 cache-aside 取聚合
// @Summary 单帖详情
// @Tags post
// @Produce json
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	result, err := h.postService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListPosts 帖子分页列表
// @Summary 帖子列表
// @Tags post
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.postService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// LikePost 点赞开关
// @Summary 点赞/取消点赞
// @Tags post
// @Produce json
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/like/{id} [put]
func (h *Handler) LikePost(c *gin.Context) {
	view, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "login required")
		return
	}
	outcome, err := h.postService.ToggleLike(c.Request.Context(), c.Param("id"), view.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"outcome": outcome})
}

// CommentPost 评论
// @Summary 评论帖子
// @Tags post
// @Accept json
// @Produce json
// @Param id path string true "帖子ID"
// @Param request body commentRequest true "comment"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/comment/{id} [post]
func (h *Handler) CommentPost(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "login required")
		return
	}
	comment, err := h.postService.AddComment(c.Request.Context(), c.Param("id"), view.ID, req.Text, nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

// ReplyComment 回复评论
// @Summary 回复评论
// @Tags post
// @Accept json
// @Produce json
// @Param id path string true "帖子ID"
// @Param comment_id path string true "被回复评论ID"
// @Param request body commentRequest true "reply"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/reply/{id}/{comment_id} [post]
func (h *Handler) ReplyComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "login required")
		return
	}
	replyTo := c.Param("comment_id")
	comment, err := h.postService.AddComment(c.Request.Context(), c.Param("id"), view.ID, req.Text, &replyTo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

// DeletePost 删除帖子（级联评论与点赞，失效聚合缓存）
// @Summary 删除帖子
// @Tags post
// @Produce json
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	view, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "login required")
		return
	}
	if err := h.postService.Delete(c.Request.Context(), c.Param("id"), view.ID, view.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "post deleted"})
}
