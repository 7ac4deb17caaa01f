package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/payload"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/repository"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/usecase"
	"github.com/vasapolrittideah/formation-hub/shared/response"
	"github.com/vasapolrittideah/formation-hub/shared/validation"
)

// ListFormations handles GET /api/formations
func (h *ContentHTTPHandler) ListFormations(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	params := repository.FilterFormationsParams{
		Category: query.Get("category"),
		Level:    query.Get("level"),
		Tag:      query.Get("tag"),
		Search:   query.Get("search"),
		Sort:     query.Get("sort"),
		Limit:    parseUint(query.Get("limit"), 20),
		Offset:   parseUint(query.Get("offset"), 0),
	}

	formations, total, err := h.formationUsecase.List(r.Context(), v, params)
	if err != nil {
		h.writeError(w, err, "failed to list formations")
		return
	}

	resp := payload.FormationListResponse{
		Formations: make([]payload.FormationResponse, len(formations)),
		Total:      total,
		Limit:      params.Limit,
		Offset:     params.Offset,
	}
	for i, f := range formations {
		resp.Formations[i] = payload.ToFormationResponse(f)
	}

	response.JSON(w, http.StatusOK, resp)
}

// GetFormation handles GET /api/formations/{id}
func (h *ContentHTTPHandler) GetFormation(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	formation, err := h.formationUsecase.Get(r.Context(), v, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "failed to get formation")
		return
	}

	response.JSON(w, http.StatusOK, payload.ToFormationResponse(formation))
}

// GetFormationBySlug handles GET /api/formations/slug/{slug}
func (h *ContentHTTPHandler) GetFormationBySlug(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	formation, err := h.formationUsecase.GetBySlug(r.Context(), v, chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, err, "failed to get formation by slug")
		return
	}

	response.JSON(w, http.StatusOK, payload.ToFormationResponse(formation))
}

// CreateFormation handles POST /api/admin/formations
func (h *ContentHTTPHandler) CreateFormation(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	var req payload.CreateFormationRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err)
		return
	}

	formation, err := h.formationUsecase.Create(r.Context(), usecase.CreateFormationParams{
		Title:         req.Title,
		Slug:          req.Slug,
		Description:   req.Description,
		Category:      req.Category,
		Level:         req.Level,
		Tags:          req.Tags,
		CoverImageKey: req.CoverImageKey,
		Published:     req.Published,
	}, v.UserID)
	if err != nil {
		h.writeError(w, err, "failed to create formation")
		return
	}

	response.JSON(w, http.StatusCreated, payload.ToFormationResponse(formation))
}

// UpdateFormation handles PUT /api/admin/formations/{id}
func (h *ContentHTTPHandler) UpdateFormation(w http.ResponseWriter, r *http.Request) {
	var req payload.UpdateFormationRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err)
		return
	}

	formation, err := h.formationUsecase.Update(r.Context(), chi.URLParam(r, "id"), repository.UpdateFormationParams{
		Title:         req.Title,
		Slug:          req.Slug,
		Description:   req.Description,
		Category:      req.Category,
		Level:         req.Level,
		Tags:          req.Tags,
		CoverImageKey: req.CoverImageKey,
		Published:     req.Published,
	})
	if err != nil {
		h.writeError(w, err, "failed to update formation")
		return
	}

	response.JSON(w, http.StatusOK, payload.ToFormationResponse(formation))
}

// DeleteFormation handles DELETE /api/admin/formations/{id}
func (h *ContentHTTPHandler) DeleteFormation(w http.ResponseWriter, r *http.Request) {
	if err := h.formationUsecase.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err, "failed to delete formation")
		return
	}

	response.NoContent(w)
}

// BulkFormations handles POST /api/admin/formations/bulk
func (h *ContentHTTPHandler) BulkFormations(w http.ResponseWriter, r *http.Request) {
	var req payload.BulkActionRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err)
		return
	}

	result, err := h.formationUsecase.Bulk(r.Context(), req.IDs, usecase.BulkAction(req.Action))
	if err != nil {
		h.writeError(w, err, "failed to run bulk action on formations")
		return
	}

	h.logger.Info().
		Str("action", req.Action).
		Int("processed", result.Processed).
		Int("failed", len(result.Failed)).
		Msg("formation bulk action")

	response.JSON(w, http.StatusOK, payload.ToBulkActionResponse(result))
}

// ListChapters handles GET /api/formations/{id}/chapters
func (h *ContentHTTPHandler) ListChapters(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	chapters, err := h.chapterUsecase.List(r.Context(), v, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "failed to list chapters")
		return
	}

	response.JSON(w, http.StatusOK, payload.ToChapterListResponse(chapters))
}

// GetChapter handles GET /api/chapters/{id}
func (h *ContentHTTPHandler) GetChapter(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	chapter, err := h.chapterUsecase.Get(r.Context(), v, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "failed to get chapter")
		return
	}

	response.JSON(w, http.StatusOK, payload.ToChapterResponse(chapter))
}

// CreateChapter handles POST /api/admin/formations/{id}/chapters
func (h *ContentHTTPHandler) CreateChapter(w http.ResponseWriter, r *http.Request) {
	var req payload.CreateChapterRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err)
		return
	}

	chapter, err := h.chapterUsecase.Create(r.Context(), chi.URLParam(r, "id"), usecase.CreateChapterParams{
		Title:           req.Title,
		Content:         req.Content,
		VideoURL:        req.VideoURL,
		DurationMinutes: req.DurationMinutes,
		Published:       req.Published,
	})
	if err != nil {
		h.writeError(w, err, "failed to create chapter")
		return
	}

	response.JSON(w, http.StatusCreated, payload.ToChapterResponse(chapter))
}

// ReorderChapters handles PUT /api/admin/formations/{id}/chapters/order
func (h *ContentHTTPHandler) ReorderChapters(w http.ResponseWriter, r *http.Request) {
	var req payload.ReorderChaptersRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err)
		return
	}

	chapters, err := h.chapterUsecase.Reorder(r.Context(), chi.URLParam(r, "id"), req.ChapterIDs)
	if err != nil {
		h.writeError(w, err, "failed to reorder chapters")
		return
	}

	response.JSON(w, http.StatusOK, payload.ToChapterListResponse(chapters))
}

// UpdateChapter handles PUT /api/admin/chapters/{id}
func (h *ContentHTTPHandler) UpdateChapter(w http.ResponseWriter, r *http.Request) {
	var req payload.UpdateChapterRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err)
		return
	}

	chapter, err := h.chapterUsecase.Update(r.Context(), chi.URLParam(r, "id"), repository.UpdateChapterParams{
		Title:           req.Title,
		Content:         req.Content,
		VideoURL:        req.VideoURL,
		DurationMinutes: req.DurationMinutes,
		Published:       req.Published,
	})
	if err != nil {
		h.writeError(w, err, "failed to update chapter")
		return
	}

	response.JSON(w, http.StatusOK, payload.ToChapterResponse(chapter))
}

// DeleteChapter handles DELETE /api/admin/chapters/{id}
func (h *ContentHTTPHandler) DeleteChapter(w http.ResponseWriter, r *http.Request) {
	if err := h.chapterUsecase.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err, "failed to delete chapter")
		return
	}

	response.NoContent(w)
}
