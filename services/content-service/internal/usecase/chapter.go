package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/repository"
)

// ChapterUsecase defines the operations on the chapters of a formation.
type ChapterUsecase interface {
	List(ctx context.Context, viewer Viewer, formationID string) ([]*model.Chapter, error)
	Get(ctx context.Context, viewer Viewer, id string) (*model.Chapter, error)
	Create(ctx context.Context, formationID string, params CreateChapterParams) (*model.Chapter, error)
	Update(ctx context.Context, id string, params repository.UpdateChapterParams) (*model.Chapter, error)
	Delete(ctx context.Context, id string) error

	// Reorder takes every chapter id of the formation in the wanted order.
	Reorder(ctx context.Context, formationID string, chapterIDs []string) ([]*model.Chapter, error)
}

// CreateChapterParams holds the fields an admin provides for a new chapter.
type CreateChapterParams struct {
	Title           string
	Content         string
	VideoURL        string
	DurationMinutes int
	Published       bool
}

var (
	ErrChapterNotFound = errors.New("chapter not found")
	ErrChapterOrder    = errors.New("order must list every chapter of the formation exactly once")
)

type chapterUsecase struct {
	formationRepo repository.FormationRepository
	chapterRepo   repository.ChapterRepository
	logger        *zerolog.Logger
}

// NewChapterUsecase creates a new ChapterUsecase.
func NewChapterUsecase(
	formationRepo repository.FormationRepository,
	chapterRepo repository.ChapterRepository,
	logger *zerolog.Logger,
) ChapterUsecase {
	return &chapterUsecase{
		formationRepo: formationRepo,
		chapterRepo:   chapterRepo,
		logger:        logger,
	}
}

func (u *chapterUsecase) List(ctx context.Context, viewer Viewer, formationID string) ([]*model.Chapter, error) {
	if _, err := visibleFormation(ctx, u.formationRepo, viewer, formationID); err != nil {
		return nil, err
	}

	return u.chapterRepo.ListChapters(ctx, formationID, !viewer.Admin)
}

func (u *chapterUsecase) Get(ctx context.Context, viewer Viewer, id string) (*model.Chapter, error) {
	chapter, err := u.chapterRepo.GetChapter(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrChapterNotFound
		}
		return nil, err
	}

	if !viewer.canSee(chapter.Published) {
		return nil, ErrChapterNotFound
	}

	// A published chapter of a hidden formation stays hidden.
	if _, err := visibleFormation(ctx, u.formationRepo, viewer, chapter.FormationID.Hex()); err != nil {
		if errors.Is(err, ErrFormationNotFound) {
			return nil, ErrChapterNotFound
		}
		return nil, err
	}

	return chapter, nil
}

func (u *chapterUsecase) Create(
	ctx context.Context,
	formationID string,
	params CreateChapterParams,
) (*model.Chapter, error) {
	formation, err := visibleFormation(ctx, u.formationRepo, Viewer{Admin: true}, formationID)
	if err != nil {
		return nil, err
	}

	position, err := u.chapterRepo.NextPosition(ctx, formationID)
	if err != nil {
		return nil, err
	}

	chapter, err := u.chapterRepo.CreateChapter(ctx, &model.Chapter{
		FormationID:     formation.ID,
		Title:           strings.TrimSpace(params.Title),
		Content:         params.Content,
		VideoURL:        strings.TrimSpace(params.VideoURL),
		Position:        position,
		DurationMinutes: params.DurationMinutes,
		Published:       params.Published,
	})
	if err != nil {
		return nil, err
	}

	if err := u.formationRepo.IncrementCounter(ctx, formationID, repository.FieldChapterCount, 1); err != nil {
		u.logger.Error().Err(err).Str("formation_id", formationID).Msg("failed to increment chapter count")
	}

	return chapter, nil
}

func (u *chapterUsecase) Update(
	ctx context.Context,
	id string,
	params repository.UpdateChapterParams,
) (*model.Chapter, error) {
	chapter, err := u.chapterRepo.UpdateChapter(ctx, id, params)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoChapterFields):
			return nil, ErrNothingToUpdate
		case isNotFound(err):
			return nil, ErrChapterNotFound
		}
		return nil, err
	}

	return chapter, nil
}

func (u *chapterUsecase) Delete(ctx context.Context, id string) error {
	chapter, err := u.chapterRepo.GetChapter(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return ErrChapterNotFound
		}
		return err
	}

	if err := u.chapterRepo.DeleteChapter(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrChapterNotFound
		}
		return err
	}

	formationID := chapter.FormationID.Hex()
	if err := u.formationRepo.IncrementCounter(ctx, formationID, repository.FieldChapterCount, -1); err != nil {
		u.logger.Error().Err(err).Str("formation_id", formationID).Msg("failed to decrement chapter count")
	}

	return nil
}

func (u *chapterUsecase) Reorder(
	ctx context.Context,
	formationID string,
	chapterIDs []string,
) ([]*model.Chapter, error) {
	if _, err := visibleFormation(ctx, u.formationRepo, Viewer{Admin: true}, formationID); err != nil {
		return nil, err
	}

	current, err := u.chapterRepo.ListChapters(ctx, formationID, false)
	if err != nil {
		return nil, err
	}

	if !sameChapters(current, chapterIDs) {
		return nil, ErrChapterOrder
	}

	if err := u.chapterRepo.ReorderChapters(ctx, formationID, chapterIDs); err != nil {
		if errors.Is(err, repository.ErrChapterOrderMismatch) {
			return nil, ErrChapterOrder
		}
		return nil, err
	}

	return u.chapterRepo.ListChapters(ctx, formationID, false)
}

func sameChapters(current []*model.Chapter, ids []string) bool {
	if len(current) != len(ids) {
		return false
	}

	existing := make(map[string]bool, len(current))
	for _, chapter := range current {
		existing[chapter.ID.Hex()] = true
	}

	for _, id := range ids {
		if !existing[id] {
			return false
		}
		delete(existing, id)
	}

	return len(existing) == 0
}
