package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/formation-hub/shared/middleware"
	"github.com/vasapolrittideah/formation-hub/shared/provider"
	"github.com/vasapolrittideah/formation-hub/shared/response"
	"github.com/vasapolrittideah/formation-hub/shared/validation"
)

// AuthHTTPHandler serves the auth-service HTTP API.
type AuthHTTPHandler struct {
	authUsecase          usecase.AuthUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	inviteUsecase        usecase.InviteUsecase
	userAdminUsecase     usecase.UserAdminUsecase
	validator            *validation.Validator
	logger               *zerolog.Logger
}

// NewAuthHTTPHandler creates a new AuthHTTPHandler.
func NewAuthHTTPHandler(
	authUsecase usecase.AuthUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
	inviteUsecase usecase.InviteUsecase,
	userAdminUsecase usecase.UserAdminUsecase,
	validator *validation.Validator,
	logger *zerolog.Logger,
) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		authUsecase:          authUsecase,
		passwordResetUsecase: passwordResetUsecase,
		inviteUsecase:        inviteUsecase,
		userAdminUsecase:     userAdminUsecase,
		validator:            validator,
		logger:               logger,
	}
}

// Login handles POST /api/auth/login
func (h *AuthHTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err)
		return
	}

	result, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			response.Error(w, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, usecase.ErrAccountDisabled):
			response.Error(w, http.StatusForbidden, "account is disabled")
		default:
			h.logger.Error().Err(err).Msg("failed to login")
			response.InternalError(w)
		}
		return
	}

	response.JSON(w, http.StatusOK, toAuthResponse(result))
}

// Register handles POST /api/auth/register
func (h *AuthHTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err)
		return
	}

	result, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		InviteCode: req.InviteCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserAlreadyExists):
			response.Error(w, http.StatusConflict, "user with this email already exists")
		case errors.Is(err, usecase.ErrInvalidInviteCode):
			response.Error(w, http.StatusGone, "invite code is invalid or already used")
		default:
			h.logger.Error().Err(err).Msg("failed to register user")
			response.InternalError(w)
		}
		return
	}

	response.JSON(w, http.StatusCreated, toAuthResponse(result))
}

// LoginWithGoogle handles POST /api/auth/google
func (h *AuthHTTPHandler) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	var req payload.GoogleLoginRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err)
		return
	}

	result, err := h.authUsecase.LoginWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			response.Error(w, http.StatusUnauthorized, "google sign-in failed")
		case errors.Is(err, usecase.ErrAccountDisabled):
			response.Error(w, http.StatusForbidden, "account is disabled")
		case errors.Is(err, provider.ErrGoogleDisabled):
			response.Error(w, http.StatusNotImplemented, "google sign-in is not available")
		default:
			h.logger.Error().Err(err).Msg("failed to login with google")
			response.InternalError(w)
		}
		return
	}

	response.JSON(w, http.StatusOK, toAuthResponse(result))
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so the client
// simply discards its copy.
func (h *AuthHTTPHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	response.NoContent(w)
}

// Me handles GET /api/auth/me
func (h *AuthHTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, middleware.MsgMissingToken)
		return
	}

	user, err := h.authUsecase.Me(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			response.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to get current user")
		response.InternalError(w)
		return
	}

	response.JSON(w, http.StatusOK, payload.ToUserResponse(user))
}

// UpdateMe handles PUT /api/auth/me
func (h *AuthHTTPHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, middleware.MsgMissingToken)
		return
	}

	var req payload.UpdateProfileRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err)
		return
	}

	user, err := h.authUsecase.UpdateProfile(r.Context(), claims.UserID, usecase.UpdateProfileParams{
		Name:            req.Name,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			response.Error(w, http.StatusNotFound, "user not found")
		case errors.Is(err, usecase.ErrInvalidCredentials):
			response.Error(w, http.StatusBadRequest, "current password is incorrect")
		default:
			h.logger.Error().Err(err).Msg("failed to update profile")
			response.InternalError(w)
		}
		return
	}

	response.JSON(w, http.StatusOK, payload.ToUserResponse(user))
}

func toAuthResponse(result *usecase.AuthResult) payload.AuthResponse {
	return payload.AuthResponse{
		User:     payload.ToUserResponse(result.User),
		Token:    result.Token,
		TokenKey: result.TokenKey,
	}
}
