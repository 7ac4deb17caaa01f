package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/model"
)

// ErrInviteCodeUnavailable is returned when a code does not exist or has already been used.
var ErrInviteCodeUnavailable = errors.New("invite code is invalid or already used")

// InviteCodeRepository defines the interface for invite code operations.
type InviteCodeRepository interface {
	// CreateCodes inserts the given codes.
	CreateCodes(ctx context.Context, codes []*model.InviteCode) ([]*model.InviteCode, error)

	// GetCode retrieves a code by its value.
	GetCode(ctx context.Context, code string) (*model.InviteCode, error)

	// ListCodes returns codes, newest first, optionally filtered by their used flag.
	ListCodes(ctx context.Context, used *bool, limit, offset uint64) ([]*model.InviteCode, error)

	// ConsumeCode marks an unused code as used by userID in a single
	// conditional update. Concurrent callers with the same code cannot both succeed.
	ConsumeCode(ctx context.Context, code string, userID bson.ObjectID) (*model.InviteCode, error)

	// ReleaseCode reverts ConsumeCode for userID when the registration failed afterwards.
	ReleaseCode(ctx context.Context, code string, userID bson.ObjectID) error

	// DeleteCode removes an unused code.
	DeleteCode(ctx context.Context, code string) error
}

const inviteCodeCollection = "invite_codes"

type inviteCodeMongoRepository struct {
	db *mongo.Database
}

// NewInviteCodeMongoRepository creates the invite code repository and its indexes.
func NewInviteCodeMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) InviteCodeRepository {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "used", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	if _, err := db.Collection(inviteCodeCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create invite code indexes")
	}

	return &inviteCodeMongoRepository{db: db}
}

func (r *inviteCodeMongoRepository) CreateCodes(
	ctx context.Context,
	codes []*model.InviteCode,
) ([]*model.InviteCode, error) {
	if len(codes) == 0 {
		return codes, nil
	}

	now := time.Now()
	docs := make([]any, len(codes))
	for i, code := range codes {
		code.ID = bson.NewObjectID()
		code.Used = false
		code.CreatedAt = now
		code.UpdatedAt = now
		docs[i] = code
	}

	if _, err := r.db.Collection(inviteCodeCollection).InsertMany(ctx, docs); err != nil {
		return nil, err
	}

	return codes, nil
}

func (r *inviteCodeMongoRepository) GetCode(ctx context.Context, code string) (*model.InviteCode, error) {
	var invite model.InviteCode
	if err := r.db.Collection(inviteCodeCollection).FindOne(ctx, bson.M{"code": code}).Decode(&invite); err != nil {
		return nil, err
	}

	return &invite, nil
}

func (r *inviteCodeMongoRepository) ListCodes(
	ctx context.Context,
	used *bool,
	limit, offset uint64,
) ([]*model.InviteCode, error) {
	if limit == 0 {
		limit = 50
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	filter := bson.M{}
	if used != nil {
		filter["used"] = *used
	}

	cursor, err := r.db.Collection(inviteCodeCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}

	codes := make([]*model.InviteCode, 0)
	if err := cursor.All(ctx, &codes); err != nil {
		return nil, err
	}

	return codes, nil
}

func (r *inviteCodeMongoRepository) ConsumeCode(
	ctx context.Context,
	code string,
	userID bson.ObjectID,
) (*model.InviteCode, error) {
	now := time.Now()

	var invite model.InviteCode
	err := r.db.Collection(inviteCodeCollection).FindOneAndUpdate(
		ctx,
		bson.M{"code": code, "used": false},
		bson.M{"$set": bson.M{
			"used":       true,
			"used_by":    userID,
			"used_at":    now,
			"updated_at": now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&invite)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInviteCodeUnavailable
		}
		return nil, err
	}

	return &invite, nil
}

func (r *inviteCodeMongoRepository) ReleaseCode(ctx context.Context, code string, userID bson.ObjectID) error {
	_, err := r.db.Collection(inviteCodeCollection).UpdateOne(
		ctx,
		bson.M{"code": code, "used": true, "used_by": userID},
		bson.M{
			"$set":   bson.M{"used": false, "updated_at": time.Now()},
			"$unset": bson.M{"used_by": "", "used_at": ""},
		},
	)
	return err
}

func (r *inviteCodeMongoRepository) DeleteCode(ctx context.Context, code string) error {
	result, err := r.db.Collection(inviteCodeCollection).DeleteOne(ctx, bson.M{"code": code, "used": false})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return ErrInviteCodeUnavailable
	}

	return nil
}
