package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// LibraryKind distinguishes the two reusable content libraries.
type LibraryKind string

const (
	KindTemplate LibraryKind = "template"
	KindPrompt   LibraryKind = "prompt"
)

// Valid reports whether k is a known library kind.
func (k LibraryKind) Valid() bool {
	return k == KindTemplate || k == KindPrompt
}

// LibraryItem is a template or a prompt. Both kinds share this shape but live
// in separate collections.
type LibraryItem struct {
	ID              bson.ObjectID `bson:"_id,omitempty"`
	Kind            LibraryKind   `bson:"kind"`
	Title           string        `bson:"title"`
	Description     string        `bson:"description"`
	Content         string        `bson:"content"`
	Category        string        `bson:"category"`
	Tags            []string      `bson:"tags"`
	PreviewImageKey string        `bson:"preview_image_key,omitempty"`
	Published       bool          `bson:"published"`
	LikeCount       int64         `bson:"like_count"`
	UsageCount      int64         `bson:"usage_count"`
	CreatedBy       string        `bson:"created_by"`
	CreatedAt       time.Time     `bson:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at"`
}
