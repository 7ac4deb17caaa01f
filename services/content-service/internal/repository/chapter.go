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

var (
	ErrNoChapterFields = errors.New("no chapter fields to update")

	// ErrChapterOrderMismatch is returned when a reorder does not name exactly
	// the chapters of the formation.
	ErrChapterOrderMismatch = errors.New("chapter order does not match the formation's chapters")
)

// ChapterRepository defines the interface for chapter-related database operations.
type ChapterRepository interface {
	CreateChapter(ctx context.Context, chapter *model.Chapter) (*model.Chapter, error)
	GetChapter(ctx context.Context, id string) (*model.Chapter, error)
	UpdateChapter(ctx context.Context, id string, params UpdateChapterParams) (*model.Chapter, error)
	DeleteChapter(ctx context.Context, id string) error

	// ListChapters returns the chapters of a formation ordered by position.
	ListChapters(ctx context.Context, formationID string, publishedOnly bool) ([]*model.Chapter, error)

	// NextPosition returns the position a chapter appended to the formation should take.
	NextPosition(ctx context.Context, formationID string) (int, error)

	// ReorderChapters sets positions 1..n following chapterIDs.
	ReorderChapters(ctx context.Context, formationID string, chapterIDs []string) error

	DeleteChaptersByFormation(ctx context.Context, formationID string) (int64, error)
}

// UpdateChapterParams defines the optional parameters for updating a chapter.
// Only the fields that are not nil will be updated.
type UpdateChapterParams struct {
	Title           *string
	Content         *string
	VideoURL        *string
	DurationMinutes *int
	Published       *bool
}

const chapterCollection = "chapters"

type chapterMongoRepository struct {
	db *mongo.Database
}

// NewChapterMongoRepository creates the chapters repository and its indexes.
func NewChapterMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) ChapterRepository {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "formation_id", Value: 1}, {Key: "position", Value: 1}},
		},
	}

	if _, err := db.Collection(chapterCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create chapter indexes")
	}

	return &chapterMongoRepository{db: db}
}

func (r *chapterMongoRepository) CreateChapter(ctx context.Context, chapter *model.Chapter) (*model.Chapter, error) {
	now := time.Now()
	chapter.CreatedAt = now
	chapter.UpdatedAt = now

	result, err := r.db.Collection(chapterCollection).InsertOne(ctx, chapter)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		chapter.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return chapter, nil
}

func (r *chapterMongoRepository) GetChapter(ctx context.Context, id string) (*model.Chapter, error) {
	objectID, err := objectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var chapter model.Chapter
	if err := r.db.Collection(chapterCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&chapter); err != nil {
		return nil, err
	}

	return &chapter, nil
}

func (r *chapterMongoRepository) UpdateChapter(
	ctx context.Context,
	id string,
	params UpdateChapterParams,
) (*model.Chapter, error) {
	objectID, err := objectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	updateMap := bson.M{}
	if params.Title != nil {
		updateMap["title"] = *params.Title
	}
	if params.Content != nil {
		updateMap["content"] = *params.Content
	}
	if params.VideoURL != nil {
		updateMap["video_url"] = *params.VideoURL
	}
	if params.DurationMinutes != nil {
		updateMap["duration_minutes"] = *params.DurationMinutes
	}
	if params.Published != nil {
		updateMap["published"] = *params.Published
	}

	if len(updateMap) == 0 {
		return nil, ErrNoChapterFields
	}

	updateMap["updated_at"] = time.Now()

	var chapter model.Chapter
	err = r.db.Collection(chapterCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&chapter)
	if err != nil {
		return nil, err
	}

	return &chapter, nil
}

func (r *chapterMongoRepository) DeleteChapter(ctx context.Context, id string) error {
	objectID, err := objectIDFromHex(id)
	if err != nil {
		return err
	}

	result, err := r.db.Collection(chapterCollection).DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (r *chapterMongoRepository) ListChapters(
	ctx context.Context,
	formationID string,
	publishedOnly bool,
) ([]*model.Chapter, error) {
	objectID, err := objectIDFromHex(formationID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"formation_id": objectID}
	if publishedOnly {
		filter["published"] = true
	}

	cursor, err := r.db.Collection(chapterCollection).Find(
		ctx,
		filter,
		options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}

	return decodeAll[model.Chapter](ctx, cursor)
}

func (r *chapterMongoRepository) NextPosition(ctx context.Context, formationID string) (int, error) {
	objectID, err := objectIDFromHex(formationID)
	if err != nil {
		return 0, err
	}

	var last model.Chapter
	err = r.db.Collection(chapterCollection).FindOne(
		ctx,
		bson.M{"formation_id": objectID},
		options.FindOne().SetSort(bson.D{{Key: "position", Value: -1}}),
	).Decode(&last)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 1, nil
		}
		return 0, err
	}

	return last.Position + 1, nil
}

func (r *chapterMongoRepository) ReorderChapters(ctx context.Context, formationID string, chapterIDs []string) error {
	formationObjectID, err := objectIDFromHex(formationID)
	if err != nil {
		return err
	}

	now := time.Now()
	models := make([]mongo.WriteModel, len(chapterIDs))
	for i, id := range chapterIDs {
		chapterObjectID, err := bson.ObjectIDFromHex(id)
		if err != nil {
			return ErrChapterOrderMismatch
		}

		models[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": chapterObjectID, "formation_id": formationObjectID}).
			SetUpdate(bson.M{"$set": bson.M{"position": i + 1, "updated_at": now}})
	}

	if len(models) == 0 {
		return nil
	}

	result, err := r.db.Collection(chapterCollection).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return err
	}

	if result.MatchedCount != int64(len(chapterIDs)) {
		return ErrChapterOrderMismatch
	}

	return nil
}

func (r *chapterMongoRepository) DeleteChaptersByFormation(ctx context.Context, formationID string) (int64, error) {
	objectID, err := objectIDFromHex(formationID)
	if err != nil {
		return 0, err
	}

	result, err := r.db.Collection(chapterCollection).DeleteMany(ctx, bson.M{"formation_id": objectID})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}
