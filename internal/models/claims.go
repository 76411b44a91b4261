package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserClaims is the JWT payload issued by the external auth collaborator.
// This core only reads identity and role out of it; token issuance and
// session management live elsewhere.
type UserClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims carry the admin role.
func (c *UserClaims) IsAdmin() bool {
	return c.Role == "admin"
}
