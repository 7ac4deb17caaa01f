package repository

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CounterField is a numeric field that is only ever changed with $inc.
type CounterField string

const (
	FieldViewCount    CounterField = "view_count"
	FieldLikeCount    CounterField = "like_count"
	FieldChapterCount CounterField = "chapter_count"
	FieldUsageCount   CounterField = "usage_count"
)

// Sort orders understood by the list queries.
const (
	SortNewest  = "newest"
	SortPopular = "popular"
	SortTitle   = "title"
	SortUsage   = "usage"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// objectIDFromHex maps a malformed id to mongo.ErrNoDocuments so callers
// treat it like any other missing document.
func objectIDFromHex(id string) (bson.ObjectID, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, mongo.ErrNoDocuments
	}
	return objectID, nil
}

func incrementField(
	ctx context.Context,
	collection *mongo.Collection,
	id string,
	field CounterField,
	delta int64,
) error {
	objectID, err := objectIDFromHex(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": objectID}
	// Counters never go below zero, even if a decrement races a delete.
	if delta < 0 {
		filter[string(field)] = bson.M{"$gte": -delta}
	}

	_, err = collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{string(field): delta}})
	return err
}

// searchFilter matches term anywhere in the given fields, case-insensitively.
func searchFilter(term string, fields ...string) bson.A {
	pattern := bson.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	clauses := make(bson.A, len(fields))
	for i, field := range fields {
		clauses[i] = bson.M{field: pattern}
	}
	return clauses
}

func pageOptions(limit, offset uint64) *options.FindOptionsBuilder {
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	findOptions := options.Find().SetLimit(int64(limit))
	if offset > 0 {
		findOptions.SetSkip(int64(offset))
	}
	return findOptions
}

func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]*T, error) {
	defer cursor.Close(ctx)

	items := make([]*T, 0)
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
