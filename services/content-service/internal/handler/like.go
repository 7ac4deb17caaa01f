package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/payload"
	"github.com/vasapolrittideah/formation-hub/shared/response"
)

// ToggleLike handles POST /api/{formations|templates|prompts}/{id}/like
func (h *ContentHTTPHandler) ToggleLike(kind model.TargetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}

		state, err := h.likeUsecase.Toggle(r.Context(), v, kind, chi.URLParam(r, "id"))
		if err != nil {
			h.writeError(w, err, "failed to toggle like")
			return
		}

		response.JSON(w, http.StatusOK, payload.LikeStateResponse{Liked: state.Liked, LikeCount: state.LikeCount})
	}
}

// MyLikes handles GET /api/me/likes
func (h *ContentHTTPHandler) MyLikes(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	likes, err := h.likeUsecase.ListMine(r.Context(), v.UserID, model.TargetKind(r.URL.Query().Get("kind")))
	if err != nil {
		h.writeError(w, err, "failed to list likes")
		return
	}

	response.JSON(w, http.StatusOK, payload.ToLikeListResponse(likes))
}
