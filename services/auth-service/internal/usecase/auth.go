package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/formation-hub/shared/auth"
	"github.com/vasapolrittideah/formation-hub/shared/mailer"
	"github.com/vasapolrittideah/formation-hub/shared/provider"
	"github.com/vasapolrittideah/formation-hub/shared/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)
	Register(ctx context.Context, params RegisterParams) (*AuthResult, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error)
	Me(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*model.User, error)
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Email      string
	Password   string
	Name       string
	InviteCode string
}

// UpdateProfileParams defines the fields a user may change on their own account.
// NewPassword requires CurrentPassword.
type UpdateProfileParams struct {
	Name            *string
	CurrentPassword string
	NewPassword     string
}

// AuthResult is returned by every successful sign-in.
type AuthResult struct {
	User     *model.User
	Token    string
	TokenKey string
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	IssueToken(subject auth.Subject) (string, error)
}

// GoogleTokenValidator validates Google ID tokens.
type GoogleTokenValidator interface {
	ValidateIDToken(ctx context.Context, idToken string) (*provider.GoogleIdentity, error)
}

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidInviteCode  = errors.New("invite code is invalid or already used")
	ErrUserNotFound       = errors.New("user not found")
)

type authUsecase struct {
	userRepo       repository.UserRepository
	identityRepo   repository.IdentityRepository
	inviteCodeRepo repository.InviteCodeRepository
	tokenIssuer    TokenIssuer
	google         GoogleTokenValidator
	mailer         mailer.Sender
	logger         *zerolog.Logger
	appURL         string
}

// NewAuthUsecase creates a new AuthUsecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	identityRepo repository.IdentityRepository,
	inviteCodeRepo repository.InviteCodeRepository,
	tokenIssuer TokenIssuer,
	google GoogleTokenValidator,
	mailer mailer.Sender,
	logger *zerolog.Logger,
	appURL string,
) AuthUsecase {
	return &authUsecase{
		userRepo:       userRepo,
		identityRepo:   identityRepo,
		inviteCodeRepo: inviteCodeRepo,
		tokenIssuer:    tokenIssuer,
		google:         google,
		mailer:         mailer,
		logger:         logger,
		appURL:         appURL,
	}
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, normalizeEmail(params.Email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	if user.Disabled {
		return nil, ErrAccountDisabled
	}

	user = u.recordLogin(ctx, user, model.ProviderEmail)

	return u.issue(user)
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	email := normalizeEmail(params.Email)

	// Cheap pre-check so an existing account does not burn an invite code.
	if _, err := u.userRepo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	userID := bson.NewObjectID()
	code := strings.TrimSpace(params.InviteCode)

	if _, err := u.inviteCodeRepo.ConsumeCode(ctx, code, userID); err != nil {
		if errors.Is(err, repository.ErrInviteCodeUnavailable) {
			return nil, ErrInvalidInviteCode
		}
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		ID:           userID,
		Email:        email,
		Name:         strings.TrimSpace(params.Name),
		PasswordHash: passwordHash,
		Role:         auth.RoleUser,
	})
	if err != nil {
		if releaseErr := u.inviteCodeRepo.ReleaseCode(ctx, code, userID); releaseErr != nil {
			u.logger.Error().Err(releaseErr).Str("code", code).Msg("failed to release invite code")
		}

		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserAlreadyExists
		}

		return nil, err
	}

	if _, err := u.identityRepo.CreateIdentity(ctx, &model.Identity{
		UserID:   user.ID.Hex(),
		Provider: model.ProviderEmail,
		Email:    user.Email,
	}); err != nil {
		u.logger.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to create email identity")
	}

	u.sendWelcome(user)

	return u.issue(user)
}

func (u *authUsecase) LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	googleIdentity, err := u.google.ValidateIDToken(ctx, idToken)
	if err != nil {
		if errors.Is(err, provider.ErrGoogleDisabled) {
			return nil, err
		}
		u.logger.Warn().Err(err).Msg("google id token rejected")
		return nil, ErrInvalidCredentials
	}

	var user *model.User

	identity, err := u.identityRepo.GetIdentityByProvider(ctx, googleIdentity.UserID, model.ProviderGoogle)
	switch {
	case err == nil:
		user, err = u.userRepo.GetUser(ctx, identity.UserID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrInvalidCredentials
			}
			return nil, err
		}
	case errors.Is(err, mongo.ErrNoDocuments):
		// Google sign-in never creates accounts: registration is invite only.
		user, err = u.userRepo.GetUserByEmail(ctx, normalizeEmail(googleIdentity.Email))
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrInvalidCredentials
			}
			return nil, err
		}

		if _, err := u.identityRepo.CreateIdentity(ctx, &model.Identity{
			UserID:     user.ID.Hex(),
			Provider:   model.ProviderGoogle,
			ProviderID: googleIdentity.UserID,
			Email:      googleIdentity.Email,
		}); err != nil && !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}

		if !user.Verified {
			verified := true
			if updated, err := u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
				Verified: &verified,
			}); err == nil {
				user = updated
			}
		}
	default:
		return nil, err
	}

	if user.Disabled {
		return nil, ErrAccountDisabled
	}

	user = u.recordLogin(ctx, user, model.ProviderGoogle)

	return u.issue(user)
}

func (u *authUsecase) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

func (u *authUsecase) UpdateProfile(
	ctx context.Context,
	userID string,
	params UpdateProfileParams,
) (*model.User, error) {
	user, err := u.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	update := repository.UpdateUserParams{}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		update.Name = &name
	}

	if params.NewPassword != "" {
		ok, err := security.VerifyPassword(params.CurrentPassword, user.PasswordHash)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrInvalidCredentials
		}

		hash, err := security.HashPassword(params.NewPassword)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = &hash
	}

	if update.Name == nil && update.PasswordHash == nil {
		return user, nil
	}

	updated, err := u.userRepo.UpdateUser(ctx, userID, update)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return updated, nil
}

// recordLogin stamps the last-login time. Failures are logged and never block sign-in.
func (u *authUsecase) recordLogin(ctx context.Context, user *model.User, providerName string) *model.User {
	now := time.Now()

	updated, err := u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{LastLoginAt: &now})
	if err != nil {
		u.logger.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to record last login")
		updated = user
	}

	if err := u.identityRepo.UpdateLastLogin(ctx, user.ID.Hex(), providerName); err != nil {
		u.logger.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to record identity login")
	}

	return updated
}

func (u *authUsecase) issue(user *model.User) (*AuthResult, error) {
	token, err := u.tokenIssuer.IssueToken(auth.Subject{
		UserID: user.ID.Hex(),
		Role:   user.Role,
	})
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:     user,
		Token:    token,
		TokenKey: user.Role.TokenKey(),
	}, nil
}

func (u *authUsecase) sendWelcome(user *model.User) {
	name := user.Name
	if name == "" {
		name = user.Email
	}

	htmlBody := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your account is ready. You can sign in and start browsing formations here:</p>
		<p><a href="%s">%s</a></p>
		<p>The Formation Hub Team</p>
	`, name, u.appURL, u.appURL)

	if err := u.mailer.Send(mailer.Email{
		To:       []string{user.Email},
		Subject:  "Welcome to Formation Hub",
		HTMLBody: htmlBody,
	}); err != nil {
		u.logger.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to send welcome email")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
