package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// InviteCode is a single-use code that gates registration.
type InviteCode struct {
	ID        bson.ObjectID  `bson:"_id,omitempty"`
	Code      string         `bson:"code"`
	Note      string         `bson:"note,omitempty"`
	Used      bool           `bson:"used"`
	UsedBy    *bson.ObjectID `bson:"used_by,omitempty"`
	UsedAt    *time.Time     `bson:"used_at,omitempty"`
	CreatedBy string         `bson:"created_by,omitempty"`
	CreatedAt time.Time      `bson:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at"`
}
