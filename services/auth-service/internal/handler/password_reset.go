package handler

import (
	"errors"
	"net"
	"net/http"

	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/formation-hub/shared/response"
	"github.com/vasapolrittideah/formation-hub/shared/validation"
)

// RequestPasswordReset handles POST /api/auth/password-reset/request. It
// answers 202 whether or not the email belongs to an account.
func (h *AuthHTTPHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req payload.RequestPasswordResetRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err)
		return
	}

	if err := h.passwordResetUsecase.RequestPasswordReset(r.Context(), req.Email, clientIP(r)); err != nil {
		h.logger.Error().Err(err).Msg("failed to request password reset")
		response.InternalError(w)
		return
	}

	response.JSON(w, http.StatusAccepted, map[string]string{
		"message": "if the email exists, a password reset link has been sent",
	})
}

// ValidatePasswordResetToken handles GET /api/auth/password-reset/validate?token=
func (h *AuthHTTPHandler) ValidatePasswordResetToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.Error(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := h.passwordResetUsecase.ValidatePasswordResetToken(r.Context(), token); err != nil {
		h.writePasswordResetError(w, err, "failed to validate password reset token")
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// ResetPassword handles POST /api/auth/password-reset
func (h *AuthHTTPHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err)
		return
	}

	if err := h.passwordResetUsecase.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.writePasswordResetError(w, err, "failed to reset password")
		return
	}

	response.NoContent(w)
}

func (h *AuthHTTPHandler) writePasswordResetError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, usecase.ErrTokenNotFound):
		response.Error(w, http.StatusNotFound, "password reset token not found")
	case errors.Is(err, usecase.ErrTokenAlreadyUsed):
		response.Error(w, http.StatusGone, "password reset token has already been used")
	case errors.Is(err, usecase.ErrTokenExpired):
		response.Error(w, http.StatusGone, "password reset token has expired")
	case errors.Is(err, usecase.ErrInvalidToken):
		response.Error(w, http.StatusBadRequest, "invalid password reset token")
	default:
		h.logger.Error().Err(err).Msg(msg)
		response.InternalError(w)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
