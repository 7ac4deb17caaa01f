package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Chapter is one lesson of a formation. Position orders chapters within
// their formation, starting at 1.
type Chapter struct {
	ID              bson.ObjectID `bson:"_id,omitempty"`
	FormationID     bson.ObjectID `bson:"formation_id"`
	Title           string        `bson:"title"`
	Content         string        `bson:"content"`
	VideoURL        string        `bson:"video_url,omitempty"`
	Position        int           `bson:"position"`
	DurationMinutes int           `bson:"duration_minutes"`
	Published       bool          `bson:"published"`
	CreatedAt       time.Time     `bson:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at"`
}
