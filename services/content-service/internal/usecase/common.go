package usecase

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

var (
	ErrNothingToUpdate  = errors.New("nothing to update")
	ErrInvalidBulkInput = errors.New("bulk action needs at least one id and a known action")
)

// Viewer is the caller a read is performed for. Only admins see unpublished content.
type Viewer struct {
	UserID string
	Admin  bool
}

func (v Viewer) canSee(published bool) bool {
	return published || v.Admin
}

// BulkAction is an admin operation applied to many items at once.
type BulkAction string

const (
	BulkPublish   BulkAction = "publish"
	BulkUnpublish BulkAction = "unpublish"
	BulkDelete    BulkAction = "delete"
)

// MaxBulkItems caps the ids accepted by one bulk request.
const MaxBulkItems = 100

func (a BulkAction) Valid() bool {
	return a == BulkPublish || a == BulkUnpublish || a == BulkDelete
}

// BulkFailure is one id a bulk action could not be applied to.
type BulkFailure struct {
	ID    string
	Error string
}

// BulkResult reports how a bulk action went. Items are processed one after
// the other and a failure never stops the rest.
type BulkResult struct {
	Processed int
	Failed    []BulkFailure
}

func runBulk(
	ctx context.Context,
	ids []string,
	action BulkAction,
	apply func(ctx context.Context, id string, action BulkAction) error,
) (*BulkResult, error) {
	if len(ids) == 0 || len(ids) > MaxBulkItems || !action.Valid() {
		return nil, ErrInvalidBulkInput
	}

	result := &BulkResult{Failed: []BulkFailure{}}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if seen[id] {
			continue
		}
		seen[id] = true

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := apply(ctx, id, action); err != nil {
			result.Failed = append(result.Failed, BulkFailure{ID: id, Error: bulkErrorMessage(err)})
			continue
		}
		result.Processed++
	}

	return result, nil
}

func bulkErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrFormationNotFound), errors.Is(err, ErrLibraryItemNotFound):
		return "not found"
	default:
		return "failed"
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
