package service

import (
	"crypto/subtle"
	"time"

	"retroboard/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AdminSessionTTL is the fixed admin session lifetime. The admin UI
// refreshes the token on a timer while open.
const AdminSessionTTL = 2 * time.Hour

// AdminSession is the session object handed to the client. The token is a
// signed JWT carrying the same fields, so the server verifies every
// privileged call instead of trusting client-held state.
type AdminSession struct {
	ID         string    `json:"id"`
	IsAdmin    bool      `json:"isAdmin"`
	LoggedInAt time.Time `json:"loggedInAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Token      string    `json:"token"`
}

// AdminService validates the out-of-band admin credentials and issues and
// refreshes admin session tokens.
type AdminService struct {
	adminID      string
	passwordHash string
	jwtSecret    []byte
	now          func() time.Time
}

func NewAdminService(adminID, passwordHash, jwtSecret string) *AdminService {
	return &AdminService{
		adminID:      adminID,
		passwordHash: passwordHash,
		jwtSecret:    []byte(jwtSecret),
		now:          time.Now,
	}
}

func (s *AdminService) Login(id, password string) (*AdminSession, error) {
	idMatch := subtle.ConstantTimeCompare([]byte(id), []byte(s.adminID)) == 1
	pwErr := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password))
	if !idMatch || pwErr != nil {
		return nil, models.NewUnauthorizedError("invalid admin credentials")
	}
	return s.issue(id)
}

// Refresh re-issues a session for a still-valid admin token.
func (s *AdminService) Refresh(tokenString string) (*AdminSession, error) {
	claims := &models.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, models.NewUnauthorizedError("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("invalid or expired admin session")
	}
	if !claims.IsAdmin {
		return nil, models.NewForbiddenError("not an admin session")
	}
	return s.issue(claims.UserID)
}

func (s *AdminService) issue(id string) (*AdminSession, error) {
	loggedInAt := s.now().UTC()
	expiresAt := loggedInAt.Add(AdminSessionTTL)

	claims := &models.AuthClaims{
		UserID:  id,
		IsAdmin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(loggedInAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &AdminSession{
		ID:         id,
		IsAdmin:    true,
		LoggedInAt: loggedInAt,
		ExpiresAt:  expiresAt,
		Token:      signed,
	}, nil
}
