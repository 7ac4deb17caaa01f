package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PasswordResetToken tracks one emailed reset link. The link carries a JWT
// whose jti points at this record, so a link works at most once.
type PasswordResetToken struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	UserID      bson.ObjectID `bson:"user_id"`
	JTI         string        `bson:"jti"`
	Email       string        `bson:"email"`
	Used        bool          `bson:"used"`
	UsedAt      *time.Time    `bson:"used_at,omitempty"`
	RequestedIP string        `bson:"requested_ip,omitempty"`
	ExpiresAt   time.Time     `bson:"expires_at"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}
