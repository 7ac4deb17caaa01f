package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/repository"
	authtypes "github.com/vasapolrittideah/formation-hub/services/auth-service/pkg/types"
	"github.com/vasapolrittideah/formation-hub/shared/auth"
	"github.com/vasapolrittideah/formation-hub/shared/mailer"
	"github.com/vasapolrittideah/formation-hub/shared/security"
)

// PasswordResetUsecase defines the business logic for password reset token operations.
type PasswordResetUsecase interface {
	// RequestPasswordReset emails a reset link to the account behind email, if any.
	RequestPasswordReset(ctx context.Context, email, requestIP string) error

	// ResetPassword consumes the reset link and replaces the user's password.
	ResetPassword(ctx context.Context, token, newPassword string) error

	// ValidatePasswordResetToken checks that a reset link can still be used.
	ValidatePasswordResetToken(ctx context.Context, token string) error
}

// ResetTokenSigner signs and parses password reset links.
type ResetTokenSigner interface {
	GenerateToken(claims jwt.Claims) (string, error)
	ValidateTokenWithClaims(tokenString string, claims jwt.Claims) (*jwt.Token, error)
	RegisteredClaims(subject string) jwt.RegisteredClaims
	TTL() time.Duration
}

type passwordResetUsecase struct {
	userRepo  repository.UserRepository
	tokenRepo repository.PasswordResetTokenRepository
	signer    ResetTokenSigner
	mailer    mailer.Sender
	resetURL  string
}

var (
	ErrTokenNotFound    = errors.New("password reset token not found")
	ErrTokenAlreadyUsed = errors.New("password reset token has already been used")
	ErrTokenExpired     = errors.New("password reset token has expired")
	ErrInvalidToken     = errors.New("invalid password reset token")
)

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	tokenRepo repository.PasswordResetTokenRepository,
	signer ResetTokenSigner,
	mailer mailer.Sender,
	resetURL string,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		signer:    signer,
		mailer:    mailer,
		resetURL:  resetURL,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email, requestIP string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// To prevent email enumeration, do not reveal that the email does not exist.
			return nil
		}
		return err
	}

	if user.Disabled {
		return nil
	}

	if err := u.tokenRepo.InvalidateUserTokens(ctx, user.ID.Hex()); err != nil {
		return err
	}

	tokenStr, claims, err := u.generatePasswordResetToken(user.ID.Hex(), user.Email)
	if err != nil {
		return err
	}

	if _, err := u.tokenRepo.CreateToken(ctx, &model.PasswordResetToken{
		JTI:         claims.ID,
		UserID:      user.ID,
		Email:       user.Email,
		RequestedIP: requestIP,
		ExpiresAt:   claims.ExpiresAt.Time,
	}); err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s?token=%s", u.resetURL, url.QueryEscape(tokenStr))
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>If you made this request, please click the link below to create a new password:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in %s for your security.</p>
		<p>If you did not request a password reset, you can safely ignore this email.</p>

		<p>The Formation Hub Team</p>
	`, resetLink, resetLink, u.signer.TTL())

	return u.mailer.Send(mailer.Email{
		To:       []string{user.Email},
		Subject:  "Password Reset Request",
		HTMLBody: htmlBody,
	})
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := u.parse(token)
	if err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	resetToken, err := u.tokenRepo.ConsumeToken(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenUnavailable) {
			return u.explainUnavailable(ctx, claims.ID)
		}
		return err
	}

	if _, err := u.userRepo.UpdateUser(ctx, resetToken.UserID.Hex(), repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	}); err != nil {
		return err
	}

	return nil
}

func (u *passwordResetUsecase) ValidatePasswordResetToken(ctx context.Context, token string) error {
	claims, err := u.parse(token)
	if err != nil {
		return err
	}

	resetToken, err := u.tokenRepo.GetTokenByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTokenNotFound
		}
		return err
	}

	return checkResetToken(resetToken)
}

func (u *passwordResetUsecase) parse(token string) (*authtypes.PasswordResetClaims, error) {
	claims := &authtypes.PasswordResetClaims{}
	if _, err := u.signer.ValidateTokenWithClaims(token, claims); err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims.ID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// explainUnavailable reports why ConsumeToken matched nothing.
func (u *passwordResetUsecase) explainUnavailable(ctx context.Context, jti string) error {
	resetToken, err := u.tokenRepo.GetTokenByJTI(ctx, jti)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTokenNotFound
		}
		return err
	}

	if err := checkResetToken(resetToken); err != nil {
		return err
	}

	return ErrInvalidToken
}

func checkResetToken(resetToken *model.PasswordResetToken) error {
	if resetToken.Used {
		return ErrTokenAlreadyUsed
	}

	if time.Now().After(resetToken.ExpiresAt) {
		return ErrTokenExpired
	}

	return nil
}

// generatePasswordResetToken creates a password reset JWT token with a unique JTI.
func (u *passwordResetUsecase) generatePasswordResetToken(
	userID, email string,
) (string, *authtypes.PasswordResetClaims, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", nil, err
	}

	claims := &authtypes.PasswordResetClaims{
		UserID:           userID,
		Email:            email,
		RegisteredClaims: u.signer.RegisteredClaims(userID),
	}
	claims.ID = jti

	tokenStr, err := u.signer.GenerateToken(claims)
	if err != nil {
		return "", nil, err
	}

	return tokenStr, claims, nil
}

// generateJTI generates a unique JTI.
func generateJTI() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
