// Package types holds auth-service types shared with other packages.
package types

import "github.com/golang-jwt/jwt/v5"

// PasswordResetClaims is the payload of an emailed password reset link.
// RegisteredClaims.ID carries the jti of the stored reset record.
type PasswordResetClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
