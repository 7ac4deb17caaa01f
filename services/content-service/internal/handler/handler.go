package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/media"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/usecase"
	"github.com/vasapolrittideah/formation-hub/shared/auth"
	"github.com/vasapolrittideah/formation-hub/shared/middleware"
	"github.com/vasapolrittideah/formation-hub/shared/response"
	"github.com/vasapolrittideah/formation-hub/shared/validation"
)

type ContentHTTPHandler struct {
	formationUsecase usecase.FormationUsecase
	chapterUsecase   usecase.ChapterUsecase
	libraryUsecase   usecase.LibraryUsecase
	likeUsecase      usecase.LikeUsecase
	storage          media.Storage
	validator        *validation.Validator
	logger           *zerolog.Logger
}

func NewContentHTTPHandler(
	formationUsecase usecase.FormationUsecase,
	chapterUsecase usecase.ChapterUsecase,
	libraryUsecase usecase.LibraryUsecase,
	likeUsecase usecase.LikeUsecase,
	storage media.Storage,
	validator *validation.Validator,
	logger *zerolog.Logger,
) *ContentHTTPHandler {
	return &ContentHTTPHandler{
		formationUsecase: formationUsecase,
		chapterUsecase:   chapterUsecase,
		libraryUsecase:   libraryUsecase,
		likeUsecase:      likeUsecase,
		storage:          storage,
		validator:        validator,
		logger:           logger,
	}
}

// viewer reads the caller from the verified token. Routes are mounted behind
// RequireUser or RequireAdmin, so a missing claim means a wiring mistake.
func viewer(w http.ResponseWriter, r *http.Request) (usecase.Viewer, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, middleware.MsgMissingToken)
		return usecase.Viewer{}, false
	}

	return usecase.Viewer{UserID: claims.UserID, Admin: claims.Role == auth.RoleAdmin}, true
}

// writeError maps usecase errors to status codes; anything unknown is logged as a 500.
func (h *ContentHTTPHandler) writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, usecase.ErrFormationNotFound),
		errors.Is(err, usecase.ErrChapterNotFound),
		errors.Is(err, usecase.ErrLibraryItemNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, usecase.ErrSlugTaken):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, usecase.ErrInvalidLevel),
		errors.Is(err, usecase.ErrInvalidSlug),
		errors.Is(err, usecase.ErrNothingToUpdate),
		errors.Is(err, usecase.ErrChapterOrder),
		errors.Is(err, usecase.ErrInvalidBulkInput),
		errors.Is(err, usecase.ErrUnknownTargetKind),
		errors.Is(err, usecase.ErrUnknownLibraryKind),
		errors.Is(err, media.ErrUnsupportedMedia),
		errors.Is(err, media.ErrInvalidObjectFolder):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, media.ErrStorageDisabled):
		response.Error(w, http.StatusNotImplemented, err.Error())
	default:
		h.logger.Error().Err(err).Msg(msg)
		response.InternalError(w)
	}
}

// parseUint reads a non-negative query value that fits in an int64.
func parseUint(value string, fallback uint64) uint64 {
	if value == "" {
		return fallback
	}

	n, err := strconv.ParseUint(value, 10, 63)
	if err != nil {
		return fallback
	}

	return n
}
