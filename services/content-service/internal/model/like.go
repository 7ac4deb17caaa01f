package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// TargetKind names what a like points at.
type TargetKind string

const (
	TargetFormation TargetKind = "formation"
	TargetTemplate  TargetKind = "template"
	TargetPrompt    TargetKind = "prompt"
)

// Like records that a user liked a formation, template or prompt. A user
// likes a given target at most once.
type Like struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	UserID     string        `bson:"user_id"`
	TargetKind TargetKind    `bson:"target_kind"`
	TargetID   bson.ObjectID `bson:"target_id"`
	CreatedAt  time.Time     `bson:"created_at"`
}
