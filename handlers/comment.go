package handlers

import (
	"net/http"

	"retroboard/middleware"
	"retroboard/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) ListComments(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comments, err := h.comments.ListByPost(ctx, postID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *Handler) CreateComment(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.boardSettings(c).AllowComments {
		h.respondError(c, models.NewForbiddenError("comments are disabled"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment := &models.Comment{
		PostID:   postID,
		Content:  req.Content,
		AuthorID: c.GetString(middleware.CtxUserID),
		Author:   models.Author{Name: c.GetString(middleware.CtxUserName)},
	}
	if err := h.comments.Create(ctx, comment); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) UpdateComment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.comments.Update(ctx, id, req.Content, c.GetString(middleware.CtxUserID))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	callerUID := c.GetString(middleware.CtxUserID)
	if c.GetBool(middleware.CtxIsAdmin) {
		callerUID = ""
	}

	if err := h.comments.Delete(ctx, id, callerUID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}
