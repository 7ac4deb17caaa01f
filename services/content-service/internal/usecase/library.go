package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/repository"
)

// LibraryUsecase defines the operations on templates and prompts.
type LibraryUsecase interface {
	List(
		ctx context.Context,
		viewer Viewer,
		kind model.LibraryKind,
		params repository.FilterLibraryItemsParams,
	) ([]*model.LibraryItem, int64, error)
	Get(ctx context.Context, viewer Viewer, kind model.LibraryKind, id string) (*model.LibraryItem, error)
	Create(
		ctx context.Context,
		kind model.LibraryKind,
		params CreateLibraryItemParams,
		createdBy string,
	) (*model.LibraryItem, error)
	Update(
		ctx context.Context,
		kind model.LibraryKind,
		id string,
		params repository.UpdateLibraryItemParams,
	) (*model.LibraryItem, error)

	// Delete removes the item and the likes pointing at it.
	Delete(ctx context.Context, kind model.LibraryKind, id string) error

	// RecordUsage counts one use of the item, e.g. a copy of a prompt.
	RecordUsage(ctx context.Context, viewer Viewer, kind model.LibraryKind, id string) (*model.LibraryItem, error)

	Bulk(ctx context.Context, kind model.LibraryKind, ids []string, action BulkAction) (*BulkResult, error)
}

// CreateLibraryItemParams holds the fields an admin provides for a new template or prompt.
type CreateLibraryItemParams struct {
	Title           string
	Description     string
	Content         string
	Category        string
	Tags            []string
	PreviewImageKey string
	Published       bool
}

var (
	ErrLibraryItemNotFound = errors.New("item not found")
	ErrUnknownLibraryKind  = errors.New("unknown library kind")
)

type libraryUsecase struct {
	repos    map[model.LibraryKind]repository.LibraryItemRepository
	likeRepo repository.LikeRepository
	logger   *zerolog.Logger
}

// NewLibraryUsecase creates a new LibraryUsecase serving one repository per kind.
func NewLibraryUsecase(
	likeRepo repository.LikeRepository,
	logger *zerolog.Logger,
	repos ...repository.LibraryItemRepository,
) LibraryUsecase {
	byKind := make(map[model.LibraryKind]repository.LibraryItemRepository, len(repos))
	for _, repo := range repos {
		byKind[repo.Kind()] = repo
	}

	return &libraryUsecase{
		repos:    byKind,
		likeRepo: likeRepo,
		logger:   logger,
	}
}

func (u *libraryUsecase) repo(kind model.LibraryKind) (repository.LibraryItemRepository, error) {
	repo, ok := u.repos[kind]
	if !ok {
		return nil, ErrUnknownLibraryKind
	}
	return repo, nil
}

func (u *libraryUsecase) List(
	ctx context.Context,
	viewer Viewer,
	kind model.LibraryKind,
	params repository.FilterLibraryItemsParams,
) ([]*model.LibraryItem, int64, error) {
	repo, err := u.repo(kind)
	if err != nil {
		return nil, 0, err
	}

	params.PublishedOnly = !viewer.Admin

	items, err := repo.ListItems(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	total, err := repo.CountItems(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (u *libraryUsecase) Get(
	ctx context.Context,
	viewer Viewer,
	kind model.LibraryKind,
	id string,
) (*model.LibraryItem, error) {
	repo, err := u.repo(kind)
	if err != nil {
		return nil, err
	}

	item, err := repo.GetItem(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLibraryItemNotFound
		}
		return nil, err
	}

	if !viewer.canSee(item.Published) {
		return nil, ErrLibraryItemNotFound
	}

	return item, nil
}

func (u *libraryUsecase) Create(
	ctx context.Context,
	kind model.LibraryKind,
	params CreateLibraryItemParams,
	createdBy string,
) (*model.LibraryItem, error) {
	repo, err := u.repo(kind)
	if err != nil {
		return nil, err
	}

	return repo.CreateItem(ctx, &model.LibraryItem{
		Title:           strings.TrimSpace(params.Title),
		Description:     params.Description,
		Content:         params.Content,
		Category:        strings.TrimSpace(params.Category),
		Tags:            normalizeTags(params.Tags),
		PreviewImageKey: params.PreviewImageKey,
		Published:       params.Published,
		CreatedBy:       createdBy,
	})
}

func (u *libraryUsecase) Update(
	ctx context.Context,
	kind model.LibraryKind,
	id string,
	params repository.UpdateLibraryItemParams,
) (*model.LibraryItem, error) {
	repo, err := u.repo(kind)
	if err != nil {
		return nil, err
	}

	if params.Tags != nil {
		tags := normalizeTags(*params.Tags)
		params.Tags = &tags
	}

	item, err := repo.UpdateItem(ctx, id, params)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoLibraryItemFields):
			return nil, ErrNothingToUpdate
		case isNotFound(err):
			return nil, ErrLibraryItemNotFound
		}
		return nil, err
	}

	return item, nil
}

func (u *libraryUsecase) Delete(ctx context.Context, kind model.LibraryKind, id string) error {
	repo, err := u.repo(kind)
	if err != nil {
		return err
	}

	item, err := repo.GetItem(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return ErrLibraryItemNotFound
		}
		return err
	}

	if err := repo.DeleteItem(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrLibraryItemNotFound
		}
		return err
	}

	if _, err := u.likeRepo.DeleteLikesByTarget(ctx, targetKindOf(kind), item.ID); err != nil {
		return fmt.Errorf("delete likes of %s %s: %w", kind, id, err)
	}

	return nil
}

func (u *libraryUsecase) RecordUsage(
	ctx context.Context,
	viewer Viewer,
	kind model.LibraryKind,
	id string,
) (*model.LibraryItem, error) {
	item, err := u.Get(ctx, viewer, kind, id)
	if err != nil {
		return nil, err
	}

	if err := u.repos[kind].IncrementCounter(ctx, id, repository.FieldUsageCount, 1); err != nil {
		return nil, err
	}
	item.UsageCount++

	u.logger.Debug().Str("kind", string(kind)).Str("id", id).Str("user_id", viewer.UserID).Msg("usage recorded")

	return item, nil
}

func (u *libraryUsecase) Bulk(
	ctx context.Context,
	kind model.LibraryKind,
	ids []string,
	action BulkAction,
) (*BulkResult, error) {
	if _, err := u.repo(kind); err != nil {
		return nil, err
	}

	return runBulk(ctx, ids, action, func(ctx context.Context, id string, action BulkAction) error {
		if action == BulkDelete {
			return u.Delete(ctx, kind, id)
		}

		published := action == BulkPublish
		_, err := u.Update(ctx, kind, id, repository.UpdateLibraryItemParams{Published: &published})
		return err
	})
}

func targetKindOf(kind model.LibraryKind) model.TargetKind {
	if kind == model.KindPrompt {
		return model.TargetPrompt
	}
	return model.TargetTemplate
}
