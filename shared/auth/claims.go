package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role is the access level embedded in an access token.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// TokenKey returns the name under which clients persist a token of this role.
func (r Role) TokenKey() string {
	if r == RoleAdmin {
		return "adminToken"
	}
	return "userToken"
}

// Subject is the authenticated identity a token is issued for.
type Subject struct {
	UserID string
	Role   Role
}

// Claims represents the payload of an access token.
type Claims struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}
