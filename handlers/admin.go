package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"retroboard/models"
	"retroboard/service"

	"github.com/gin-gonic/gin"
)

type AdminLoginRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon"`
}

type ReorderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type UpdateFlagsRequest struct {
	AllowAnonymousPosting *bool `json:"allowAnonymousPosting"`
	AllowComments         *bool `json:"allowComments"`
}

func (h *Handler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.admin.Login(req.ID, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// AdminRefresh extends a still-valid session; the admin UI calls this on a
// timer while open.
func (h *Handler) AdminRefresh(c *gin.Context) {
	token := c.GetHeader("Authorization")
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no admin token provided"})
		return
	}

	session, err := h.admin.Refresh(token)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) AddCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := adminRequestContext(c)
	defer cancel()

	category, err := h.categories.Add(ctx, req.Name, req.Icon)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := adminRequestContext(c)
	defer cancel()

	category, err := h.categories.Update(ctx, c.Param("id"), req.Name, req.Icon)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	ctx, cancel := adminRequestContext(c)
	defer cancel()

	reassigned, err := h.categories.Delete(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.cache.InvalidatePosts(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"message":         "category deleted",
		"reassignedPosts": reassigned,
	})
}

func (h *Handler) ReorderCategories(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := adminRequestContext(c)
	defer cancel()

	categories, err := h.categories.Reorder(ctx, req.IDs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) UpdateSettingsFlags(c *gin.Context) {
	var req UpdateFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := adminRequestContext(c)
	defer cancel()

	// Unlike the read paths, this loads settings strictly: saving fallback
	// defaults after a failed read would overwrite the real document.
	settings, err := h.settings.Get(ctx)
	if err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != models.CodeNotFound {
			h.respondError(c, err)
			return
		}
		settings = models.DefaultSettings(time.Now().UTC())
	}

	if req.AllowAnonymousPosting != nil {
		settings.AllowAnonymousPosting = *req.AllowAnonymousPosting
	}
	if req.AllowComments != nil {
		settings.AllowComments = *req.AllowComments
	}

	if err := h.settings.Save(ctx, settings); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

type BackupRequest struct {
	Collections  []string `json:"collections"`
	IncludeUsers bool     `json:"includeUsers"`
}

func (h *Handler) CreateBackup(c *gin.Context) {
	var req BackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := adminRequestContext(c)
	defer cancel()

	backup, err := h.backups.Create(ctx, req.Collections, req.IncludeUsers)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, backup)
}

func (h *Handler) RestoreBackup(c *gin.Context) {
	var opts service.RestoreOptions
	opts.Collections = strings.Split(c.Query("collections"), ",")
	if len(opts.Collections) == 1 && opts.Collections[0] == "" {
		opts.Collections = nil
	}
	opts.Overwrite = c.Query("overwrite") == "true"
	opts.DeleteBeforeRestore = c.Query("deleteBeforeRestore") == "true"

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	ctx, cancel := adminRequestContext(c)
	defer cancel()

	result, err := h.backups.Restore(ctx, raw, opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
