package models

import "github.com/golang-jwt/jwt/v5"

// AuthClaims is the JWT payload for both regular users and the admin
// session. Admin tokens additionally carry isAdmin and a 2 hour expiry.
type AuthClaims struct {
	UserID      string `json:"userId"`
	Name        string `json:"name,omitempty"`
	IsAnonymous bool   `json:"isAnonymous,omitempty"`
	IsAdmin     bool   `json:"isAdmin,omitempty"`
	jwt.RegisteredClaims
}
