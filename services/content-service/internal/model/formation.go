package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Formation levels accepted by the API.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Formation is a course made of ordered chapters.
type Formation struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	Title         string        `bson:"title"`
	Slug          string        `bson:"slug"`
	Description   string        `bson:"description"`
	Category      string        `bson:"category"`
	Level         string        `bson:"level"`
	Tags          []string      `bson:"tags"`
	CoverImageKey string        `bson:"cover_image_key,omitempty"`
	Published     bool          `bson:"published"`
	LikeCount     int64         `bson:"like_count"`
	ViewCount     int64         `bson:"view_count"`
	ChapterCount  int64         `bson:"chapter_count"`
	CreatedBy     string        `bson:"created_by"`
	CreatedAt     time.Time     `bson:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at"`
}
