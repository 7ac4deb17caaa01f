package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/model"
)

// ErrAlreadyLiked is returned by CreateLike when the user already likes the target.
var ErrAlreadyLiked = errors.New("target already liked")

// LikeRepository defines the interface for like-related database operations.
type LikeRepository interface {
	CreateLike(ctx context.Context, like *model.Like) (*model.Like, error)

	// DeleteLike removes the user's like and reports whether one existed.
	DeleteLike(ctx context.Context, userID string, kind model.TargetKind, targetID bson.ObjectID) (bool, error)

	// ListLikesByUser returns the user's likes, newest first. An empty kind matches every kind.
	ListLikesByUser(ctx context.Context, userID string, kind model.TargetKind) ([]*model.Like, error)

	DeleteLikesByTarget(ctx context.Context, kind model.TargetKind, targetID bson.ObjectID) (int64, error)
}

const likeCollection = "likes"

type likeMongoRepository struct {
	db *mongo.Database
}

// NewLikeMongoRepository creates the likes repository and its unique (user, target) index.
func NewLikeMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) LikeRepository {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "target_kind", Value: 1},
				{Key: "target_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "target_kind", Value: 1}, {Key: "target_id", Value: 1}},
		},
	}

	if _, err := db.Collection(likeCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create like indexes")
	}

	return &likeMongoRepository{db: db}
}

func (r *likeMongoRepository) CreateLike(ctx context.Context, like *model.Like) (*model.Like, error) {
	like.CreatedAt = time.Now()

	result, err := r.db.Collection(likeCollection).InsertOne(ctx, like)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyLiked
		}
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		like.ID = objectID
	}

	return like, nil
}

func (r *likeMongoRepository) DeleteLike(
	ctx context.Context,
	userID string,
	kind model.TargetKind,
	targetID bson.ObjectID,
) (bool, error) {
	result, err := r.db.Collection(likeCollection).DeleteOne(ctx, likeFilter(userID, kind, targetID))
	if err != nil {
		return false, err
	}

	return result.DeletedCount > 0, nil
}

func (r *likeMongoRepository) ListLikesByUser(
	ctx context.Context,
	userID string,
	kind model.TargetKind,
) ([]*model.Like, error) {
	filter := bson.M{"user_id": userID}
	if kind != "" {
		filter["target_kind"] = kind
	}

	cursor, err := r.db.Collection(likeCollection).Find(
		ctx,
		filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}

	return decodeAll[model.Like](ctx, cursor)
}

func (r *likeMongoRepository) DeleteLikesByTarget(
	ctx context.Context,
	kind model.TargetKind,
	targetID bson.ObjectID,
) (int64, error) {
	result, err := r.db.Collection(likeCollection).DeleteMany(ctx, bson.M{
		"target_kind": kind,
		"target_id":   targetID,
	})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

func likeFilter(userID string, kind model.TargetKind, targetID bson.ObjectID) bson.M {
	return bson.M{
		"user_id":     userID,
		"target_kind": kind,
		"target_id":   targetID,
	}
}
