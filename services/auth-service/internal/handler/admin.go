package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/formation-hub/shared/auth"
	"github.com/vasapolrittideah/formation-hub/shared/middleware"
	"github.com/vasapolrittideah/formation-hub/shared/response"
	"github.com/vasapolrittideah/formation-hub/shared/validation"
)

// ListUsers handles GET /api/admin/users
func (h *AuthHTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := repository.FilterUsersParams{
		Limit:    parseUint(query.Get("limit"), 20),
		Offset:   parseUint(query.Get("offset"), 0),
		SortDesc: query.Get("order") != "asc",
	}
	if email := query.Get("email"); email != "" {
		params.Email = &email
	}
	if role := query.Get("role"); role != "" {
		roleFilter := auth.Role(role)
		params.Role = &roleFilter
	}
	if verified, err := strconv.ParseBool(query.Get("verified")); err == nil {
		params.Verified = &verified
	}
	if sortBy := query.Get("sort"); sortBy != "" {
		params.SortBy = &sortBy
	}

	users, total, err := h.userAdminUsecase.List(r.Context(), params)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidRole) {
			response.Error(w, http.StatusBadRequest, "invalid role")
			return
		}
		h.logger.Error().Err(err).Msg("failed to list users")
		response.InternalError(w)
		return
	}

	resp := payload.UserListResponse{
		Users:  make([]payload.UserResponse, len(users)),
		Total:  total,
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	for i, user := range users {
		resp.Users[i] = payload.ToUserResponse(user)
	}

	response.JSON(w, http.StatusOK, resp)
}

// GetUser handles GET /api/admin/users/{id}
func (h *AuthHTTPHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	detail, err := h.userAdminUsecase.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			response.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to get user")
		response.InternalError(w)
		return
	}

	response.JSON(w, http.StatusOK, payload.AdminUserResponse{
		UserResponse: payload.ToUserResponse(detail.User),
		Providers:    detail.Providers,
	})
}

// UpdateUser handles PATCH /api/admin/users/{id}
func (h *AuthHTTPHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req payload.AdminUpdateUserRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err)
		return
	}

	params := usecase.AdminUpdateUserParams{
		Verified: req.Verified,
		Disabled: req.Disabled,
	}
	if req.Role != nil {
		role := auth.Role(*req.Role)
		params.Role = &role
	}

	actorID := ""
	if claims != nil {
		actorID = claims.UserID
	}

	user, err := h.userAdminUsecase.Update(r.Context(), actorID, chi.URLParam(r, "id"), params)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			response.Error(w, http.StatusNotFound, "user not found")
		case errors.Is(err, usecase.ErrInvalidRole):
			response.Error(w, http.StatusBadRequest, "invalid role")
		case errors.Is(err, usecase.ErrCannotModifySelf):
			response.Error(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to update user")
			response.InternalError(w)
		}
		return
	}

	h.logger.Info().
		Str("actor_id", actorID).
		Str("user_id", user.ID.Hex()).
		Msg("user updated by admin")

	response.JSON(w, http.StatusOK, payload.ToUserResponse(user))
}

// ListInviteCodes handles GET /api/admin/invite-codes
func (h *AuthHTTPHandler) ListInviteCodes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var used *bool
	if v, err := strconv.ParseBool(query.Get("used")); err == nil {
		used = &v
	}

	codes, err := h.inviteUsecase.List(
		r.Context(),
		used,
		parseUint(query.Get("limit"), 50),
		parseUint(query.Get("offset"), 0),
	)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list invite codes")
		response.InternalError(w)
		return
	}

	response.JSON(w, http.StatusOK, payload.ToInviteCodeListResponse(codes))
}

// GenerateInviteCodes handles POST /api/admin/invite-codes
func (h *AuthHTTPHandler) GenerateInviteCodes(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req payload.GenerateInviteCodesRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err)
		return
	}

	createdBy := ""
	if claims != nil {
		createdBy = claims.UserID
	}

	codes, err := h.inviteUsecase.Generate(r.Context(), req.Count, req.Note, createdBy)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInviteCount) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("failed to generate invite codes")
		response.InternalError(w)
		return
	}

	response.JSON(w, http.StatusCreated, payload.ToInviteCodeListResponse(codes))
}

// DeleteInviteCode handles DELETE /api/admin/invite-codes/{code}
func (h *AuthHTTPHandler) DeleteInviteCode(w http.ResponseWriter, r *http.Request) {
	if err := h.inviteUsecase.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.writeInviteError(w, err, "failed to delete invite code")
		return
	}

	response.NoContent(w)
}

// SendInviteCode handles POST /api/admin/invite-codes/{code}/send
func (h *AuthHTTPHandler) SendInviteCode(w http.ResponseWriter, r *http.Request) {
	var req payload.SendInviteCodeRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		validation.WriteError(w, err)
		return
	}

	if err := h.inviteUsecase.Send(r.Context(), chi.URLParam(r, "code"), req.Email); err != nil {
		h.writeInviteError(w, err, "failed to send invite code")
		return
	}

	response.NoContent(w)
}

func (h *AuthHTTPHandler) writeInviteError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, usecase.ErrInviteCodeNotFound):
		response.Error(w, http.StatusNotFound, "invite code not found")
	case errors.Is(err, usecase.ErrInviteCodeUsed):
		response.Error(w, http.StatusConflict, "invite code has already been used")
	default:
		h.logger.Error().Err(err).Msg(msg)
		response.InternalError(w)
	}
}

func parseUint(raw string, fallback uint64) uint64 {
	// Mongo takes int64 limits and skips.
	v, err := strconv.ParseUint(raw, 10, 63)
	if err != nil {
		return fallback
	}
	return v
}
