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

// ErrNoFormationFields is returned by UpdateFormation when params is empty.
var ErrNoFormationFields = errors.New("no formation fields to update")

// FormationRepository defines the interface for formation-related database operations.
type FormationRepository interface {
	CreateFormation(ctx context.Context, formation *model.Formation) (*model.Formation, error)
	GetFormation(ctx context.Context, id string) (*model.Formation, error)
	GetFormationBySlug(ctx context.Context, slug string) (*model.Formation, error)
	UpdateFormation(ctx context.Context, id string, params UpdateFormationParams) (*model.Formation, error)
	DeleteFormation(ctx context.Context, id string) error
	ListFormations(ctx context.Context, params FilterFormationsParams) ([]*model.Formation, error)
	CountFormations(ctx context.Context, params FilterFormationsParams) (int64, error)
	IncrementCounter(ctx context.Context, id string, field CounterField, delta int64) error
}

// UpdateFormationParams defines the optional parameters for updating a formation.
// Only the fields that are not nil will be updated.
type UpdateFormationParams struct {
	Title         *string
	Slug          *string
	Description   *string
	Category      *string
	Level         *string
	Tags          *[]string
	CoverImageKey *string
	Published     *bool
}

// FilterFormationsParams defines the parameters for filtering and paginating formations.
type FilterFormationsParams struct {
	Category      string
	Level         string
	Tag           string
	Search        string
	PublishedOnly bool
	Sort          string
	Limit         uint64
	Offset        uint64
}

const formationCollection = "formations"

type formationMongoRepository struct {
	db *mongo.Database
}

// NewFormationMongoRepository creates the formations repository and its indexes.
func NewFormationMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) FormationRepository {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "published", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}, {Key: "level", Value: 1}},
		},
	}

	if _, err := db.Collection(formationCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create formation indexes")
	}

	return &formationMongoRepository{db: db}
}

func (r *formationMongoRepository) CreateFormation(
	ctx context.Context,
	formation *model.Formation,
) (*model.Formation, error) {
	now := time.Now()
	formation.CreatedAt = now
	formation.UpdatedAt = now
	if formation.Tags == nil {
		formation.Tags = []string{}
	}

	result, err := r.db.Collection(formationCollection).InsertOne(ctx, formation)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		formation.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return formation, nil
}

func (r *formationMongoRepository) GetFormation(ctx context.Context, id string) (*model.Formation, error) {
	objectID, err := objectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *formationMongoRepository) GetFormationBySlug(ctx context.Context, slug string) (*model.Formation, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *formationMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.Formation, error) {
	var formation model.Formation
	if err := r.db.Collection(formationCollection).FindOne(ctx, filter).Decode(&formation); err != nil {
		return nil, err
	}

	return &formation, nil
}

func (r *formationMongoRepository) UpdateFormation(
	ctx context.Context,
	id string,
	params UpdateFormationParams,
) (*model.Formation, error) {
	objectID, err := objectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	updateMap := bson.M{}
	if params.Title != nil {
		updateMap["title"] = *params.Title
	}
	if params.Slug != nil {
		updateMap["slug"] = *params.Slug
	}
	if params.Description != nil {
		updateMap["description"] = *params.Description
	}
	if params.Category != nil {
		updateMap["category"] = *params.Category
	}
	if params.Level != nil {
		updateMap["level"] = *params.Level
	}
	if params.Tags != nil {
		updateMap["tags"] = *params.Tags
	}
	if params.CoverImageKey != nil {
		updateMap["cover_image_key"] = *params.CoverImageKey
	}
	if params.Published != nil {
		updateMap["published"] = *params.Published
	}

	if len(updateMap) == 0 {
		return nil, ErrNoFormationFields
	}

	updateMap["updated_at"] = time.Now()

	var formation model.Formation
	err = r.db.Collection(formationCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&formation)
	if err != nil {
		return nil, err
	}

	return &formation, nil
}

func (r *formationMongoRepository) DeleteFormation(ctx context.Context, id string) error {
	objectID, err := objectIDFromHex(id)
	if err != nil {
		return err
	}

	result, err := r.db.Collection(formationCollection).DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (r *formationMongoRepository) ListFormations(
	ctx context.Context,
	params FilterFormationsParams,
) ([]*model.Formation, error) {
	findOptions := pageOptions(params.Limit, params.Offset).SetSort(formationSort(params.Sort))

	cursor, err := r.db.Collection(formationCollection).Find(ctx, formationFilter(params), findOptions)
	if err != nil {
		return nil, err
	}

	return decodeAll[model.Formation](ctx, cursor)
}

func (r *formationMongoRepository) CountFormations(ctx context.Context, params FilterFormationsParams) (int64, error) {
	return r.db.Collection(formationCollection).CountDocuments(ctx, formationFilter(params))
}

func (r *formationMongoRepository) IncrementCounter(
	ctx context.Context,
	id string,
	field CounterField,
	delta int64,
) error {
	return incrementField(ctx, r.db.Collection(formationCollection), id, field, delta)
}

func formationFilter(params FilterFormationsParams) bson.M {
	filter := bson.M{}
	if params.PublishedOnly {
		filter["published"] = true
	}
	if params.Category != "" {
		filter["category"] = params.Category
	}
	if params.Level != "" {
		filter["level"] = params.Level
	}
	if params.Tag != "" {
		filter["tags"] = params.Tag
	}
	if params.Search != "" {
		filter["$or"] = searchFilter(params.Search, "title", "description")
	}
	return filter
}

func formationSort(sort string) bson.D {
	switch sort {
	case SortPopular:
		return bson.D{{Key: "like_count", Value: -1}, {Key: "view_count", Value: -1}, {Key: "_id", Value: -1}}
	case SortTitle:
		return bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}
