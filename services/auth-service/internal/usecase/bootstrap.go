package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/formation-hub/shared/auth"
	"github.com/vasapolrittideah/formation-hub/shared/security"
)

// BootstrapAdminParams describes the admin account seeded on an empty install.
type BootstrapAdminParams struct {
	Email    string
	Password string
	Name     string
}

// BootstrapAdmin creates the configured admin when no admin account exists yet.
// It returns the created user, or nil when nothing had to be done.
func BootstrapAdmin(
	ctx context.Context,
	userRepo repository.UserRepository,
	identityRepo repository.IdentityRepository,
	logger *zerolog.Logger,
	params BootstrapAdminParams,
) (*model.User, error) {
	if params.Email == "" || params.Password == "" {
		return nil, nil
	}

	adminRole := auth.RoleAdmin
	admins, err := userRepo.CountUsers(ctx, repository.FilterUsersParams{Role: &adminRole})
	if err != nil {
		return nil, err
	}
	if admins > 0 {
		return nil, nil
	}

	email := normalizeEmail(params.Email)

	existing, err := userRepo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		verified := true
		promoted, err := userRepo.UpdateUser(ctx, existing.ID.Hex(), repository.UpdateUserParams{
			Role:     &adminRole,
			Verified: &verified,
		})
		if err != nil {
			return nil, err
		}

		logger.Info().Str("email", email).Msg("promoted existing user to admin")
		return promoted, nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	admin, err := userRepo.CreateUser(ctx, &model.User{
		Email:        email,
		Name:         strings.TrimSpace(params.Name),
		PasswordHash: passwordHash,
		Role:         auth.RoleAdmin,
		Verified:     true,
	})
	if err != nil {
		return nil, err
	}

	if _, err := identityRepo.CreateIdentity(ctx, &model.Identity{
		UserID:   admin.ID.Hex(),
		Provider: model.ProviderEmail,
		Email:    admin.Email,
	}); err != nil {
		logger.Warn().Err(err).Str("user_id", admin.ID.Hex()).Msg("failed to create admin identity")
	}

	logger.Info().Str("email", email).Msg("created bootstrap admin")

	return admin, nil
}
