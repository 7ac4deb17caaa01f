package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/formation-hub/shared/auth"
)

// User represents a user in the authentication system.
// Users are never hard-deleted; Disabled blocks sign-in instead.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Email        string        `bson:"email"`
	Name         string        `bson:"name"`
	PasswordHash string        `bson:"password_hash"`
	Role         auth.Role     `bson:"role"`
	Verified     bool          `bson:"verified"`
	Disabled     bool          `bson:"disabled"`
	LastLoginAt  *time.Time    `bson:"last_login_at,omitempty"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == auth.RoleAdmin
}
