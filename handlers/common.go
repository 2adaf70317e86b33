package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"retroboard/cache"
	"retroboard/config"
	"retroboard/models"
	"retroboard/repository"
	"retroboard/service"
	"retroboard/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Per-request deadline for store calls, matching the retry ceiling.
const requestTimeout = 10 * time.Second

// Admin mutations contend on the settings document and retry with the
// longer AdminRetry schedule; their deadline covers its full backoff
// budget plus the regular allowance for the attempts themselves.
var adminRequestTimeout = store.AdminRetry.Budget() + requestTimeout

// Handler carries every dependency the HTTP layer needs.
type Handler struct {
	cfg        *config.Config
	log        *zap.SugaredLogger
	cache      *cache.Cache
	users      repository.UserRepository
	posts      repository.PostRepository
	comments   repository.CommentRepository
	bookmarks  repository.BookmarkRepository
	settings   repository.SettingsRepository
	categories *service.CategoryService
	backups    *service.BackupService
	admin      *service.AdminService
}

func New(
	cfg *config.Config,
	log *zap.SugaredLogger,
	c *cache.Cache,
	users repository.UserRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	bookmarks repository.BookmarkRepository,
	settings repository.SettingsRepository,
	categories *service.CategoryService,
	backups *service.BackupService,
	admin *service.AdminService,
) *Handler {
	return &Handler{
		cfg:        cfg,
		log:        log,
		cache:      c,
		users:      users,
		posts:      posts,
		comments:   comments,
		bookmarks:  bookmarks,
		settings:   settings,
		categories: categories,
		backups:    backups,
		admin:      admin,
	}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func adminRequestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), adminRequestTimeout)
}

var statusByCode = map[string]int{
	models.CodeNotFound:     http.StatusNotFound,
	models.CodeValidation:   http.StatusBadRequest,
	models.CodeUnauthorized: http.StatusUnauthorized,
	models.CodeForbidden:    http.StatusForbidden,
	models.CodeConflict:     http.StatusConflict,
	models.CodeUnavailable:  http.StatusServiceUnavailable,
	models.CodeConfig:       http.StatusInternalServerError,
}

// respondError translates application errors into HTTP responses. Anything
// unclassified is logged and hidden behind a generic 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		status, ok := statusByCode[appErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		if status >= http.StatusInternalServerError {
			h.log.Errorw("request failed", "path", c.FullPath(), "code", appErr.Code, "error", err)
		}
		c.JSON(status, gin.H{"error": appErr.Message, "code": appErr.Code})
		return
	}

	h.log.Errorw("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
