package payload

import (
	"time"

	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/model"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email      string `json:"email"      validate:"required,email"`
	Password   string `json:"password"   validate:"required,min=8,max=128"`
	Name       string `json:"name"       validate:"max=100"`
	InviteCode string `json:"inviteCode" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// AuthResponse is returned by login, register and Google sign-in. TokenKey
// names the cookie the client should store the token under.
type AuthResponse struct {
	User     UserResponse `json:"user"`
	Token    string       `json:"token"`
	TokenKey string       `json:"tokenKey"`
}

type UpdateProfileRequest struct {
	Name            *string `json:"name"            validate:"omitempty,max=100"`
	CurrentPassword string  `json:"currentPassword" validate:"required_with=NewPassword"`
	NewPassword     string  `json:"newPassword"     validate:"omitempty,min=8,max=128"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"       validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}

// UserResponse is the public view of a user. The password hash is never exposed.
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Verified    bool       `json:"verified"`
	Disabled    bool       `json:"disabled"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:          u.ID.Hex(),
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		Verified:    u.Verified,
		Disabled:    u.Disabled,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
