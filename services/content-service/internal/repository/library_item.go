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

// ErrNoLibraryItemFields is returned by UpdateItem when params is empty.
var ErrNoLibraryItemFields = errors.New("no library item fields to update")

// LibraryItemRepository stores one kind of library item, templates or prompts.
type LibraryItemRepository interface {
	Kind() model.LibraryKind
	CreateItem(ctx context.Context, item *model.LibraryItem) (*model.LibraryItem, error)
	GetItem(ctx context.Context, id string) (*model.LibraryItem, error)
	UpdateItem(ctx context.Context, id string, params UpdateLibraryItemParams) (*model.LibraryItem, error)
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, params FilterLibraryItemsParams) ([]*model.LibraryItem, error)
	CountItems(ctx context.Context, params FilterLibraryItemsParams) (int64, error)
	IncrementCounter(ctx context.Context, id string, field CounterField, delta int64) error
}

// UpdateLibraryItemParams defines the optional parameters for updating a library item.
// Only the fields that are not nil will be updated.
type UpdateLibraryItemParams struct {
	Title           *string
	Description     *string
	Content         *string
	Category        *string
	Tags            *[]string
	PreviewImageKey *string
	Published       *bool
}

// FilterLibraryItemsParams defines the parameters for filtering and paginating library items.
type FilterLibraryItemsParams struct {
	Category      string
	Tag           string
	Search        string
	PublishedOnly bool
	Sort          string
	Limit         uint64
	Offset        uint64
}

var libraryCollections = map[model.LibraryKind]string{
	model.KindTemplate: "templates",
	model.KindPrompt:   "prompts",
}

type libraryItemMongoRepository struct {
	db         *mongo.Database
	kind       model.LibraryKind
	collection string
}

// NewLibraryItemMongoRepository creates the repository for kind and its indexes.
func NewLibraryItemMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
	kind model.LibraryKind,
) LibraryItemRepository {
	collection, ok := libraryCollections[kind]
	if !ok {
		logger.Fatal().Str("kind", string(kind)).Msg("unknown library kind")
	}

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "published", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "tags", Value: 1}},
		},
	}

	if _, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Str("collection", collection).Msg("failed to create library indexes")
	}

	return &libraryItemMongoRepository{db: db, kind: kind, collection: collection}
}

func (r *libraryItemMongoRepository) Kind() model.LibraryKind {
	return r.kind
}

func (r *libraryItemMongoRepository) CreateItem(
	ctx context.Context,
	item *model.LibraryItem,
) (*model.LibraryItem, error) {
	now := time.Now()
	item.Kind = r.kind
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Tags == nil {
		item.Tags = []string{}
	}

	result, err := r.db.Collection(r.collection).InsertOne(ctx, item)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		item.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return item, nil
}

func (r *libraryItemMongoRepository) GetItem(ctx context.Context, id string) (*model.LibraryItem, error) {
	objectID, err := objectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var item model.LibraryItem
	if err := r.db.Collection(r.collection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&item); err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *libraryItemMongoRepository) UpdateItem(
	ctx context.Context,
	id string,
	params UpdateLibraryItemParams,
) (*model.LibraryItem, error) {
	objectID, err := objectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	updateMap := bson.M{}
	if params.Title != nil {
		updateMap["title"] = *params.Title
	}
	if params.Description != nil {
		updateMap["description"] = *params.Description
	}
	if params.Content != nil {
		updateMap["content"] = *params.Content
	}
	if params.Category != nil {
		updateMap["category"] = *params.Category
	}
	if params.Tags != nil {
		updateMap["tags"] = *params.Tags
	}
	if params.PreviewImageKey != nil {
		updateMap["preview_image_key"] = *params.PreviewImageKey
	}
	if params.Published != nil {
		updateMap["published"] = *params.Published
	}

	if len(updateMap) == 0 {
		return nil, ErrNoLibraryItemFields
	}

	updateMap["updated_at"] = time.Now()

	var item model.LibraryItem
	err = r.db.Collection(r.collection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *libraryItemMongoRepository) DeleteItem(ctx context.Context, id string) error {
	objectID, err := objectIDFromHex(id)
	if err != nil {
		return err
	}

	result, err := r.db.Collection(r.collection).DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (r *libraryItemMongoRepository) ListItems(
	ctx context.Context,
	params FilterLibraryItemsParams,
) ([]*model.LibraryItem, error) {
	findOptions := pageOptions(params.Limit, params.Offset).SetSort(libraryItemSort(params.Sort))

	cursor, err := r.db.Collection(r.collection).Find(ctx, libraryItemFilter(params), findOptions)
	if err != nil {
		return nil, err
	}

	return decodeAll[model.LibraryItem](ctx, cursor)
}

func (r *libraryItemMongoRepository) CountItems(ctx context.Context, params FilterLibraryItemsParams) (int64, error) {
	return r.db.Collection(r.collection).CountDocuments(ctx, libraryItemFilter(params))
}

func (r *libraryItemMongoRepository) IncrementCounter(
	ctx context.Context,
	id string,
	field CounterField,
	delta int64,
) error {
	return incrementField(ctx, r.db.Collection(r.collection), id, field, delta)
}

func libraryItemFilter(params FilterLibraryItemsParams) bson.M {
	filter := bson.M{}
	if params.PublishedOnly {
		filter["published"] = true
	}
	if params.Category != "" {
		filter["category"] = params.Category
	}
	if params.Tag != "" {
		filter["tags"] = params.Tag
	}
	if params.Search != "" {
		filter["$or"] = searchFilter(params.Search, "title", "description", "content")
	}
	return filter
}

func libraryItemSort(sort string) bson.D {
	switch sort {
	case SortPopular:
		return bson.D{{Key: "like_count", Value: -1}, {Key: "_id", Value: -1}}
	case SortUsage:
		return bson.D{{Key: "usage_count", Value: -1}, {Key: "_id", Value: -1}}
	case SortTitle:
		return bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}
