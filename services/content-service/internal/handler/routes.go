package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/shared/middleware"
	"github.com/vasapolrittideah/formation-hub/shared/response"
)

// NewRouter builds the content-service HTTP router.
func NewRouter(
	h *ContentHTTPHandler,
	verifier middleware.TokenVerifier,
	logger *zerolog.Logger,
	allowedOrigin string,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.CORS(allowedOrigin))
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/health", HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(verifier, logger))

			r.Get("/formations", h.ListFormations)
			r.Get("/formations/slug/{slug}", h.GetFormationBySlug)
			r.Get("/formations/{id}", h.GetFormation)
			r.Get("/formations/{id}/chapters", h.ListChapters)
			r.Post("/formations/{id}/like", h.ToggleLike(model.TargetFormation))
			r.Get("/chapters/{id}", h.GetChapter)

			libraryRoutes(r, "/templates", model.KindTemplate, model.TargetTemplate, h)
			libraryRoutes(r, "/prompts", model.KindPrompt, model.TargetPrompt, h)

			r.Get("/me/likes", h.MyLikes)
			r.Get("/media", h.MediaURL)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(verifier, logger))

			r.Post("/formations", h.CreateFormation)
			r.Post("/formations/bulk", h.BulkFormations)
			r.Put("/formations/{id}", h.UpdateFormation)
			r.Delete("/formations/{id}", h.DeleteFormation)
			r.Post("/formations/{id}/chapters", h.CreateChapter)
			r.Put("/formations/{id}/chapters/order", h.ReorderChapters)
			r.Put("/chapters/{id}", h.UpdateChapter)
			r.Delete("/chapters/{id}", h.DeleteChapter)

			adminLibraryRoutes(r, "/templates", model.KindTemplate, h)
			adminLibraryRoutes(r, "/prompts", model.KindPrompt, h)

			r.Post("/media/presign", h.PresignUpload)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func libraryRoutes(r chi.Router, prefix string, kind model.LibraryKind, target model.TargetKind, h *ContentHTTPHandler) {
	r.Get(prefix, h.ListLibraryItems(kind))
	r.Get(prefix+"/{id}", h.GetLibraryItem(kind))
	r.Post(prefix+"/{id}/like", h.ToggleLike(target))
	r.Post(prefix+"/{id}/use", h.UseLibraryItem(kind))
}

func adminLibraryRoutes(r chi.Router, prefix string, kind model.LibraryKind, h *ContentHTTPHandler) {
	r.Post(prefix, h.CreateLibraryItem(kind))
	r.Post(prefix+"/bulk", h.BulkLibraryItems(kind))
	r.Put(prefix+"/{id}", h.UpdateLibraryItem(kind))
	r.Delete(prefix+"/{id}", h.DeleteLibraryItem(kind))
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
