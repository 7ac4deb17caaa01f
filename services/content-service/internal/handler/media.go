package handler

import (
	"net/http"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/payload"
	"github.com/vasapolrittideah/formation-hub/shared/response"
	"github.com/vasapolrittideah/formation-hub/shared/validation"
)

// PresignUpload handles POST /api/admin/media/presign
func (h *ContentHTTPHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	var req payload.PresignUploadRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err)
		return
	}

	presigned, err := h.storage.PresignUpload(r.Context(), req.Folder, req.ContentType)
	if err != nil {
		h.writeError(w, err, "failed to presign upload")
		return
	}

	response.JSON(w, http.StatusOK, presigned)
}

// MediaURL handles GET /api/media?key=...
func (h *ContentHTTPHandler) MediaURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		response.Error(w, http.StatusBadRequest, "key is required")
		return
	}

	presigned, err := h.storage.PresignDownload(r.Context(), key)
	if err != nil {
		h.writeError(w, err, "failed to presign download")
		return
	}

	response.JSON(w, http.StatusOK, presigned)
}
