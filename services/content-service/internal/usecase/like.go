package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/repository"
)

// LikeUsecase toggles likes and lists what a user liked.
type LikeUsecase interface {
	// Toggle likes the target when the user has not liked it yet and unlikes it otherwise.
	Toggle(ctx context.Context, viewer Viewer, kind model.TargetKind, targetID string) (*LikeState, error)
	ListMine(ctx context.Context, userID string, kind model.TargetKind) ([]*model.Like, error)
}

// LikeState is the outcome of a toggle.
type LikeState struct {
	Liked     bool
	LikeCount int64
}

var ErrUnknownTargetKind = errors.New("unknown like target")

type likeUsecase struct {
	likeRepo      repository.LikeRepository
	formationRepo repository.FormationRepository
	library       LibraryUsecase
	counters      map[model.TargetKind]counter
	logger        *zerolog.Logger
}

type counter interface {
	IncrementCounter(ctx context.Context, id string, field repository.CounterField, delta int64) error
}

// NewLikeUsecase creates a new LikeUsecase.
func NewLikeUsecase(
	likeRepo repository.LikeRepository,
	formationRepo repository.FormationRepository,
	templateRepo repository.LibraryItemRepository,
	promptRepo repository.LibraryItemRepository,
	logger *zerolog.Logger,
) LikeUsecase {
	return &likeUsecase{
		likeRepo:      likeRepo,
		formationRepo: formationRepo,
		library:       NewLibraryUsecase(likeRepo, logger, templateRepo, promptRepo),
		counters: map[model.TargetKind]counter{
			model.TargetFormation: formationRepo,
			model.TargetTemplate:  templateRepo,
			model.TargetPrompt:    promptRepo,
		},
		logger: logger,
	}
}

func (u *likeUsecase) Toggle(
	ctx context.Context,
	viewer Viewer,
	kind model.TargetKind,
	targetID string,
) (*LikeState, error) {
	objectID, err := u.target(ctx, viewer, kind, targetID)
	if err != nil {
		return nil, err
	}

	removed, err := u.likeRepo.DeleteLike(ctx, viewer.UserID, kind, objectID)
	if err != nil {
		return nil, err
	}

	if removed {
		if err := u.counters[kind].IncrementCounter(ctx, targetID, repository.FieldLikeCount, -1); err != nil {
			return nil, err
		}
		return u.state(ctx, viewer, kind, targetID, false)
	}

	_, err = u.likeRepo.CreateLike(ctx, &model.Like{
		UserID:     viewer.UserID,
		TargetKind: kind,
		TargetID:   objectID,
	})
	switch {
	case errors.Is(err, repository.ErrAlreadyLiked):
		u.logger.Debug().Str("user_id", viewer.UserID).Str("target_id", targetID).Msg("like already recorded")
	case err != nil:
		return nil, err
	default:
		if err := u.counters[kind].IncrementCounter(ctx, targetID, repository.FieldLikeCount, 1); err != nil {
			return nil, err
		}
	}

	return u.state(ctx, viewer, kind, targetID, true)
}

// target checks that the viewer may see the target and returns its id.
func (u *likeUsecase) target(
	ctx context.Context,
	viewer Viewer,
	kind model.TargetKind,
	targetID string,
) (bson.ObjectID, error) {
	switch kind {
	case model.TargetFormation:
		formation, err := visibleFormation(ctx, u.formationRepo, viewer, targetID)
		if err != nil {
			return bson.NilObjectID, err
		}
		return formation.ID, nil
	case model.TargetTemplate, model.TargetPrompt:
		item, err := u.library.Get(ctx, viewer, libraryKindOf(kind), targetID)
		if err != nil {
			return bson.NilObjectID, err
		}
		return item.ID, nil
	default:
		return bson.NilObjectID, ErrUnknownTargetKind
	}
}

func (u *likeUsecase) state(
	ctx context.Context,
	viewer Viewer,
	kind model.TargetKind,
	targetID string,
	liked bool,
) (*LikeState, error) {
	var count int64
	if kind == model.TargetFormation {
		formation, err := visibleFormation(ctx, u.formationRepo, viewer, targetID)
		if err != nil {
			return nil, err
		}
		count = formation.LikeCount
	} else {
		item, err := u.library.Get(ctx, viewer, libraryKindOf(kind), targetID)
		if err != nil {
			return nil, err
		}
		count = item.LikeCount
	}

	return &LikeState{Liked: liked, LikeCount: count}, nil
}

func (u *likeUsecase) ListMine(ctx context.Context, userID string, kind model.TargetKind) ([]*model.Like, error) {
	if kind != "" && u.counters[kind] == nil {
		return nil, ErrUnknownTargetKind
	}

	return u.likeRepo.ListLikesByUser(ctx, userID, kind)
}

func libraryKindOf(kind model.TargetKind) model.LibraryKind {
	if kind == model.TargetPrompt {
		return model.KindPrompt
	}
	return model.KindTemplate
}
