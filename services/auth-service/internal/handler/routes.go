package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/formation-hub/shared/middleware"
	"github.com/vasapolrittideah/formation-hub/shared/response"
)

// NewRouter builds the auth-service HTTP router.
func NewRouter(
	h *AuthHTTPHandler,
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

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Post("/google", h.LoginWithGoogle)
		r.Post("/logout", h.Logout)

		r.Post("/password-reset/request", h.RequestPasswordReset)
		r.Get("/password-reset/validate", h.ValidatePasswordResetToken)
		r.Post("/password-reset", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(verifier, logger))
			r.Get("/me", h.Me)
			r.Put("/me", h.UpdateMe)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(verifier, logger))

		r.Get("/users", h.ListUsers)
		r.Get("/users/{id}", h.GetUser)
		r.Patch("/users/{id}", h.UpdateUser)

		r.Get("/invite-codes", h.ListInviteCodes)
		r.Post("/invite-codes", h.GenerateInviteCodes)
		r.Delete("/invite-codes/{code}", h.DeleteInviteCode)
		r.Post("/invite-codes/{code}/send", h.SendInviteCode)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
