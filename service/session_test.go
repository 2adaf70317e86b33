package service

import (
	"testing"
	"time"

	"retroboard/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newTestAdminService(t *testing.T) *AdminService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAdminService("admin", string(hash), testSecret)
}

func TestAdminLogin(t *testing.T) {
	svc := newTestAdminService(t)

	t.Run("valid credentials", func(t *testing.T) {
		session, err := svc.Login("admin", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, "admin", session.ID)
		assert.True(t, session.IsAdmin)
		assert.NotEmpty(t, session.Token)
		assert.Equal(t, AdminSessionTTL, session.ExpiresAt.Sub(session.LoggedInAt))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login("admin", "wrong")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeUnauthorized, appErr.Code)
	})

	t.Run("wrong id", func(t *testing.T) {
		_, err := svc.Login("root", "hunter2")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeUnauthorized, appErr.Code)
	})
}

func TestAdminRefresh(t *testing.T) {
	t.Run("extends a live session", func(t *testing.T) {
		svc := newTestAdminService(t)
		start := time.Now().UTC()
		svc.now = func() time.Time { return start }

		session, err := svc.Login("admin", "hunter2")
		require.NoError(t, err)

		// An hour later the session is still valid and gets a fresh expiry.
		svc.now = func() time.Time { return start.Add(time.Hour) }
		refreshed, err := svc.Refresh(session.Token)
		require.NoError(t, err)
		assert.Equal(t, "admin", refreshed.ID)
		assert.Equal(t, start.Add(time.Hour+AdminSessionTTL), refreshed.ExpiresAt)
	})

	t.Run("rejects an expired session", func(t *testing.T) {
		svc := newTestAdminService(t)
		start := time.Now().UTC()
		svc.now = func() time.Time { return start }

		session, err := svc.Login("admin", "hunter2")
		require.NoError(t, err)

		svc.now = func() time.Time { return start.Add(AdminSessionTTL + time.Minute) }
		_, err = svc.Refresh(session.Token)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeUnauthorized, appErr.Code)
	})

	t.Run("rejects a non-admin token", func(t *testing.T) {
		svc := newTestAdminService(t)

		claims := &models.AuthClaims{
			UserID: "user-1",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Refresh(signed)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeForbidden, appErr.Code)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		svc := newTestAdminService(t)

		claims := &models.AuthClaims{
			UserID:  "admin",
			IsAdmin: true,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
		require.NoError(t, err)

		_, err = svc.Refresh(signed)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeUnauthorized, appErr.Code)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		svc := newTestAdminService(t)
		_, err := svc.Refresh("not-a-token")
		assert.Error(t, err)
	})
}
