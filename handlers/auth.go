package handlers

import (
	"net/http"
	"time"

	"retroboard/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const userTokenTTL = 24 * time.Hour

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) issueUserToken(uid, name string, anonymous bool) (string, error) {
	claims := &models.AuthClaims{
		UserID:      uid,
		Name:        name,
		IsAnonymous: anonymous,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(userTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.respondError(c, err)
		return
	}
	hash := string(hashed)

	user := &models.User{
		Email:        req.Email,
		PasswordHash: &hash,
		Name:         req.Name,
	}
	if err := h.users.Create(ctx, user); err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.issueUserToken(user.ID.Hex(), user.Name, false)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":  token,
		"userId": user.ID.Hex(),
		"name":   user.Name,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.FindByEmail(ctx, req.Email)
	if err != nil || user.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	if err := h.users.UpdateLastSeen(ctx, user.ID); err != nil {
		h.log.Warnw("failed to update last seen", "userId", user.ID.Hex(), "error", err)
	}

	token, err := h.issueUserToken(user.ID.Hex(), user.Name, false)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID.Hex(),
		"name":   user.Name,
	})
}

// Guest issues an anonymous identity. Guests can read everything and may
// post when the board allows anonymous posting.
func (h *Handler) Guest(c *gin.Context) {
	uid := "guest-" + uuid.NewString()
	name := "Guest"

	token, err := h.issueUserToken(uid, name, true)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":       token,
		"userId":      uid,
		"name":        name,
		"isAnonymous": true,
	})
}
