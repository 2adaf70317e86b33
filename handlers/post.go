package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"retroboard/cache"
	"retroboard/middleware"
	"retroboard/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreatePostRequest struct {
	Title    string   `json:"title" binding:"required"`
	Content  string   `json:"content" binding:"required"`
	Category string   `json:"category" binding:"required"`
	Tags     []string `json:"tags"`
}

type MovePostRequest struct {
	Category string `json:"category" binding:"required"`
}

// boardSettings is the fail-open read used by gating checks and the public
// settings endpoint. Handlers that save settings must load them strictly
// instead; these fallback defaults are never written back.
func (h *Handler) boardSettings(c *gin.Context) *models.Settings {
	ctx, cancel := requestContext(c)
	defer cancel()

	settings, err := h.settings.Get(ctx)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return models.DefaultSettings(time.Now().UTC())
		}
		h.log.Warnw("failed to load settings, using defaults", "error", err)
		return models.DefaultSettings(time.Now().UTC())
	}
	return settings
}

// ListPosts serves /posts with optional category or tag filters, backed by
// the short-lived redis cache.
func (h *Handler) ListPosts(c *gin.Context) {
	category := c.Query("category")
	tag := c.Query("tag")

	key := cache.PostListKey(category, tag)
	if payload, ok := h.cache.GetPostList(c.Request.Context(), key); ok {
		c.Data(http.StatusOK, "application/json", payload)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	var posts []*models.Post
	var err error
	switch {
	case category != "":
		posts, err = h.posts.ListByCategory(ctx, category)
	case tag != "":
		posts, err = h.posts.ListByTag(ctx, tag)
	default:
		posts, err = h.posts.List(ctx)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	payload, err := json.Marshal(posts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.cache.SetPostList(c.Request.Context(), key, payload)
	c.Data(http.StatusOK, "application/json", payload)
}

func (h *Handler) GetPost(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	// Opening a post counts as a view. Not worth a transaction; a lost
	// increment under contention is fine.
	if err := h.posts.IncrementViews(ctx, id); err != nil {
		h.log.Warnw("failed to increment view count", "postId", id.Hex(), "error", err)
	}

	post, err := h.posts.GetByID(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if c.GetBool(middleware.CtxIsAnonymous) && !h.boardSettings(c).AllowAnonymousPosting {
		h.respondError(c, models.NewForbiddenError("anonymous posting is disabled"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post := &models.Post{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
		AuthorID: c.GetString(middleware.CtxUserID),
		Author:   models.Author{Name: c.GetString(middleware.CtxUserName)},
	}
	if err := h.posts.Create(ctx, post); err != nil {
		h.respondError(c, err)
		return
	}

	h.cache.InvalidatePosts(c.Request.Context())
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) UpdatePost(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	var update models.PostUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.posts.Update(ctx, id, update, c.GetString(middleware.CtxUserID))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.cache.InvalidatePosts(c.Request.Context())
	c.JSON(http.StatusOK, post)
}

func (h *Handler) DeletePost(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	callerUID := c.GetString(middleware.CtxUserID)
	if c.GetBool(middleware.CtxIsAdmin) {
		callerUID = "" // moderation bypasses the author check
	}

	if err := h.posts.Delete(ctx, id, callerUID); err != nil {
		h.respondError(c, err)
		return
	}

	h.cache.InvalidatePosts(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

func (h *Handler) MovePost(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	var req MovePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	callerUID := c.GetString(middleware.CtxUserID)
	if c.GetBool(middleware.CtxIsAdmin) {
		callerUID = ""
	}

	post, err := h.posts.MoveToCategory(ctx, id, req.Category, callerUID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.cache.InvalidatePosts(c.Request.Context())
	c.JSON(http.StatusOK, post)
}
