package handlers

import (
	"net/http"

	"retroboard/middleware"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AddBookmarkRequest struct {
	PostID string `json:"postId" binding:"required"`
}

func (h *Handler) AddBookmark(c *gin.Context) {
	var req AddBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	postID, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	bookmark, err := h.bookmarks.Add(ctx, c.GetString(middleware.CtxUserID), postID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bookmark)
}

func (h *Handler) RemoveBookmark(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.bookmarks.Remove(ctx, c.GetString(middleware.CtxUserID), postID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bookmark removed"})
}

func (h *Handler) ListBookmarks(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	bookmarks, err := h.bookmarks.ListWithPosts(ctx, c.GetString(middleware.CtxUserID))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookmarks)
}
