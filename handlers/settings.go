package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetSettings is public: the client needs categories and board flags
// before anyone signs in.
func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.boardSettings(c))
}
