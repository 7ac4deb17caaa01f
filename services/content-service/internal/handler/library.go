package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/payload"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/repository"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/usecase"
	"github.com/vasapolrittideah/formation-hub/shared/response"
	"github.com/vasapolrittideah/formation-hub/shared/validation"
)

// Templates and prompts share these handlers; each route binds its kind.

// ListLibraryItems handles GET /api/{templates|prompts}
func (h *ContentHTTPHandler) ListLibraryItems(kind model.LibraryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}

		query := r.URL.Query()
		params := repository.FilterLibraryItemsParams{
			Category: query.Get("category"),
			Tag:      query.Get("tag"),
			Search:   query.Get("search"),
			Sort:     query.Get("sort"),
			Limit:    parseUint(query.Get("limit"), 20),
			Offset:   parseUint(query.Get("offset"), 0),
		}

		items, total, err := h.libraryUsecase.List(r.Context(), v, kind, params)
		if err != nil {
			h.writeError(w, err, fmt.Sprintf("failed to list %ss", kind))
			return
		}

		resp := payload.LibraryItemListResponse{
			Items:  make([]payload.LibraryItemResponse, len(items)),
			Total:  total,
			Limit:  params.Limit,
			Offset: params.Offset,
		}
		for i, item := range items {
			resp.Items[i] = payload.ToLibraryItemResponse(item)
		}

		response.JSON(w, http.StatusOK, resp)
	}
}

// GetLibraryItem handles GET /api/{templates|prompts}/{id}
func (h *ContentHTTPHandler) GetLibraryItem(kind model.LibraryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}

		item, err := h.libraryUsecase.Get(r.Context(), v, kind, chi.URLParam(r, "id"))
		if err != nil {
			h.writeError(w, err, fmt.Sprintf("failed to get %s", kind))
			return
		}

		response.JSON(w, http.StatusOK, payload.ToLibraryItemResponse(item))
	}
}

// UseLibraryItem handles POST /api/{templates|prompts}/{id}/use
func (h *ContentHTTPHandler) UseLibraryItem(kind model.LibraryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}

		item, err := h.libraryUsecase.RecordUsage(r.Context(), v, kind, chi.URLParam(r, "id"))
		if err != nil {
			h.writeError(w, err, fmt.Sprintf("failed to record %s usage", kind))
			return
		}

		response.JSON(w, http.StatusOK, payload.ToLibraryItemResponse(item))
	}
}

// CreateLibraryItem handles POST /api/admin/{templates|prompts}
func (h *ContentHTTPHandler) CreateLibraryItem(kind model.LibraryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}

		var req payload.CreateLibraryItemRequest
		if err := h.validator.DecodeJSON(r, &req); err != nil {
			validation.WriteError(w, err)
			return
		}

		item, err := h.libraryUsecase.Create(r.Context(), kind, usecase.CreateLibraryItemParams{
			Title:           req.Title,
			Description:     req.Description,
			Content:         req.Content,
			Category:        req.Category,
			Tags:            req.Tags,
			PreviewImageKey: req.PreviewImageKey,
			Published:       req.Published,
		}, v.UserID)
		if err != nil {
			h.writeError(w, err, fmt.Sprintf("failed to create %s", kind))
			return
		}

		response.JSON(w, http.StatusCreated, payload.ToLibraryItemResponse(item))
	}
}

// UpdateLibraryItem handles PUT /api/admin/{templates|prompts}/{id}
func (h *ContentHTTPHandler) UpdateLibraryItem(kind model.LibraryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req payload.UpdateLibraryItemRequest
		if err := h.validator.DecodeJSON(r, &req); err != nil {
			validation.WriteError(w, err)
			return
		}

		item, err := h.libraryUsecase.Update(r.Context(), kind, chi.URLParam(r, "id"), repository.UpdateLibraryItemParams{
			Title:           req.Title,
			Description:     req.Description,
			Content:         req.Content,
			Category:        req.Category,
			Tags:            req.Tags,
			PreviewImageKey: req.PreviewImageKey,
			Published:       req.Published,
		})
		if err != nil {
			h.writeError(w, err, fmt.Sprintf("failed to update %s", kind))
			return
		}

		response.JSON(w, http.StatusOK, payload.ToLibraryItemResponse(item))
	}
}

// DeleteLibraryItem handles DELETE /api/admin/{templates|prompts}/{id}
func (h *ContentHTTPHandler) DeleteLibraryItem(kind model.LibraryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.libraryUsecase.Delete(r.Context(), kind, chi.URLParam(r, "id")); err != nil {
			h.writeError(w, err, fmt.Sprintf("failed to delete %s", kind))
			return
		}

		response.NoContent(w)
	}
}

// BulkLibraryItems handles POST /api/admin/{templates|prompts}/bulk
func (h *ContentHTTPHandler) BulkLibraryItems(kind model.LibraryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req payload.BulkActionRequest
		if err := h.validator.DecodeJSON(r, &req); err != nil {
			validation.WriteError(w, err)
			return
		}

		result, err := h.libraryUsecase.Bulk(r.Context(), kind, req.IDs, usecase.BulkAction(req.Action))
		if err != nil {
			h.writeError(w, err, fmt.Sprintf("failed to run bulk action on %ss", kind))
			return
		}

		h.logger.Info().
			Str("kind", string(kind)).
			Str("action", req.Action).
			Int("processed", result.Processed).
			Int("failed", len(result.Failed)).
			Msg("library bulk action")

		response.JSON(w, http.StatusOK, payload.ToBulkActionResponse(result))
	}
}
