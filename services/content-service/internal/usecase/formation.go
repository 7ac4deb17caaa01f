package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/repository"
)

// FormationUsecase defines the operations on formations.
type FormationUsecase interface {
	List(
		ctx context.Context,
		viewer Viewer,
		params repository.FilterFormationsParams,
	) ([]*model.Formation, int64, error)

	// Get returns a formation and counts the view.
	Get(ctx context.Context, viewer Viewer, id string) (*model.Formation, error)
	GetBySlug(ctx context.Context, viewer Viewer, s string) (*model.Formation, error)

	Create(ctx context.Context, params CreateFormationParams, createdBy string) (*model.Formation, error)
	Update(ctx context.Context, id string, params repository.UpdateFormationParams) (*model.Formation, error)

	// Delete removes a formation with its chapters and likes.
	Delete(ctx context.Context, id string) error

	Bulk(ctx context.Context, ids []string, action BulkAction) (*BulkResult, error)
}

// CreateFormationParams holds the fields an admin provides for a new formation.
type CreateFormationParams struct {
	Title         string
	Slug          string
	Description   string
	Category      string
	Level         string
	Tags          []string
	CoverImageKey string
	Published     bool
}

var (
	ErrFormationNotFound = errors.New("formation not found")
	ErrSlugTaken         = errors.New("slug is already in use")
	ErrInvalidLevel      = errors.New("level must be beginner, intermediate or advanced")
	ErrInvalidSlug       = errors.New("slug must contain letters or digits")
)

const maxSlugAttempts = 50

type formationUsecase struct {
	formationRepo repository.FormationRepository
	chapterRepo   repository.ChapterRepository
	likeRepo      repository.LikeRepository
	logger        *zerolog.Logger
}

// NewFormationUsecase creates a new FormationUsecase.
func NewFormationUsecase(
	formationRepo repository.FormationRepository,
	chapterRepo repository.ChapterRepository,
	likeRepo repository.LikeRepository,
	logger *zerolog.Logger,
) FormationUsecase {
	return &formationUsecase{
		formationRepo: formationRepo,
		chapterRepo:   chapterRepo,
		likeRepo:      likeRepo,
		logger:        logger,
	}
}

func (u *formationUsecase) List(
	ctx context.Context,
	viewer Viewer,
	params repository.FilterFormationsParams,
) ([]*model.Formation, int64, error) {
	params.PublishedOnly = !viewer.Admin

	formations, err := u.formationRepo.ListFormations(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	total, err := u.formationRepo.CountFormations(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	return formations, total, nil
}

func (u *formationUsecase) Get(ctx context.Context, viewer Viewer, id string) (*model.Formation, error) {
	formation, err := visibleFormation(ctx, u.formationRepo, viewer, id)
	if err != nil {
		return nil, err
	}

	u.countView(ctx, formation)
	return formation, nil
}

func (u *formationUsecase) GetBySlug(ctx context.Context, viewer Viewer, s string) (*model.Formation, error) {
	formation, err := u.formationRepo.GetFormationBySlug(ctx, s)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrFormationNotFound
		}
		return nil, err
	}

	if !viewer.canSee(formation.Published) {
		return nil, ErrFormationNotFound
	}

	u.countView(ctx, formation)
	return formation, nil
}

// countView bumps the view counter. A failure is logged and not returned to the reader.
func (u *formationUsecase) countView(ctx context.Context, formation *model.Formation) {
	if err := u.formationRepo.IncrementCounter(ctx, formation.ID.Hex(), repository.FieldViewCount, 1); err != nil {
		u.logger.Warn().Err(err).Str("formation_id", formation.ID.Hex()).Msg("failed to count formation view")
		return
	}
	formation.ViewCount++
}

// visibleFormation returns ErrFormationNotFound for missing formations and
// for unpublished ones the viewer may not see.
func visibleFormation(
	ctx context.Context,
	repo repository.FormationRepository,
	viewer Viewer,
	id string,
) (*model.Formation, error) {
	formation, err := repo.GetFormation(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrFormationNotFound
		}
		return nil, err
	}

	if !viewer.canSee(formation.Published) {
		return nil, ErrFormationNotFound
	}

	return formation, nil
}

func (u *formationUsecase) Create(
	ctx context.Context,
	params CreateFormationParams,
	createdBy string,
) (*model.Formation, error) {
	if !validLevel(params.Level) {
		return nil, ErrInvalidLevel
	}

	formationSlug, err := u.slugFor(ctx, params.Title, params.Slug)
	if err != nil {
		return nil, err
	}

	formation, err := u.formationRepo.CreateFormation(ctx, &model.Formation{
		Title:         strings.TrimSpace(params.Title),
		Slug:          formationSlug,
		Description:   params.Description,
		Category:      strings.TrimSpace(params.Category),
		Level:         params.Level,
		Tags:          normalizeTags(params.Tags),
		CoverImageKey: params.CoverImageKey,
		Published:     params.Published,
		CreatedBy:     createdBy,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	return formation, nil
}

// slugFor returns requested when it is free, or the first free variant of
// the title's slug (title, title-2, title-3, ...).
func (u *formationUsecase) slugFor(ctx context.Context, title, requested string) (string, error) {
	if requested != "" {
		candidate := slug.Make(requested)
		if candidate == "" {
			return "", ErrInvalidSlug
		}

		taken, err := u.slugTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrSlugTaken
		}
		return candidate, nil
	}

	base := slug.Make(title)
	if base == "" {
		base = "formation"
	}

	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := u.slugTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}

	return "", ErrSlugTaken
}

func (u *formationUsecase) slugTaken(ctx context.Context, candidate string) (bool, error) {
	_, err := u.formationRepo.GetFormationBySlug(ctx, candidate)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func (u *formationUsecase) Update(
	ctx context.Context,
	id string,
	params repository.UpdateFormationParams,
) (*model.Formation, error) {
	if params.Level != nil && !validLevel(*params.Level) {
		return nil, ErrInvalidLevel
	}

	if params.Slug != nil {
		candidate := slug.Make(*params.Slug)
		if candidate == "" {
			return nil, ErrInvalidSlug
		}

		existing, err := u.formationRepo.GetFormationBySlug(ctx, candidate)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		if err == nil && existing.ID.Hex() != id {
			return nil, ErrSlugTaken
		}
		params.Slug = &candidate
	}

	if params.Tags != nil {
		tags := normalizeTags(*params.Tags)
		params.Tags = &tags
	}

	formation, err := u.formationRepo.UpdateFormation(ctx, id, params)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoFormationFields):
			return nil, ErrNothingToUpdate
		case isNotFound(err):
			return nil, ErrFormationNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	return formation, nil
}

func (u *formationUsecase) Delete(ctx context.Context, id string) error {
	formation, err := u.formationRepo.GetFormation(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return ErrFormationNotFound
		}
		return err
	}

	if err := u.formationRepo.DeleteFormation(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrFormationNotFound
		}
		return err
	}

	chapters, err := u.chapterRepo.DeleteChaptersByFormation(ctx, id)
	if err != nil {
		return fmt.Errorf("delete chapters of formation %s: %w", id, err)
	}

	likes, err := u.likeRepo.DeleteLikesByTarget(ctx, model.TargetFormation, formation.ID)
	if err != nil {
		return fmt.Errorf("delete likes of formation %s: %w", id, err)
	}

	u.logger.Info().
		Str("formation_id", id).
		Int64("chapters", chapters).
		Int64("likes", likes).
		Msg("formation deleted")

	return nil
}

func (u *formationUsecase) Bulk(ctx context.Context, ids []string, action BulkAction) (*BulkResult, error) {
	return runBulk(ctx, ids, action, func(ctx context.Context, id string, action BulkAction) error {
		if action == BulkDelete {
			return u.Delete(ctx, id)
		}

		published := action == BulkPublish
		_, err := u.Update(ctx, id, repository.UpdateFormationParams{Published: &published})
		return err
	})
}

func validLevel(level string) bool {
	switch level {
	case model.LevelBeginner, model.LevelIntermediate, model.LevelAdvanced:
		return true
	}
	return false
}
