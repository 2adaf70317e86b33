package middleware

import (
	"net/http"
	"strings"

	"retroboard/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by the auth middleware.
const (
	CtxUserID      = "userId"
	CtxUserName    = "userName"
	CtxIsAnonymous = "isAnonymous"
	CtxIsAdmin     = "isAdmin"
)

func parseToken(c *gin.Context, secret string) (*models.AuthClaims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		// Query parameter fallback for clients that cannot set headers.
		token := c.Query("token")
		if token == "" {
			return nil, models.NewUnauthorizedError("no authorization token provided")
		}
		authHeader = "Bearer " + token
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, models.NewUnauthorizedError("authorization header format should be: Bearer <token>")
	}

	claims := &models.AuthClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, models.NewUnauthorizedError("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("token validation failed")
	}
	return claims, nil
}

// JWTAuthMiddleware authenticates regular users.
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == "OPTIONS" {
			c.Next()
			return
		}

		claims, err := parseToken(c, secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserName, claims.Name)
		c.Set(CtxIsAnonymous, claims.IsAnonymous)
		c.Set(CtxIsAdmin, claims.IsAdmin)
		c.Next()
	}
}

// AdminAuthMiddleware gates moderation routes. Expiry is checked here on
// every privileged call; a stale client-held session buys nothing.
func AdminAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == "OPTIONS" {
			c.Next()
			return
		}

		claims, err := parseToken(c, secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		if !claims.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin session required"})
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxIsAdmin, true)
		c.Next()
	}
}
