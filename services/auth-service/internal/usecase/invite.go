package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/formation-hub/shared/mailer"
)

// MaxInviteBatch caps how many codes a single Generate call may create.
const MaxInviteBatch = 100

// InviteUsecase manages registration invite codes.
type InviteUsecase interface {
	Generate(ctx context.Context, count int, note, createdBy string) ([]*model.InviteCode, error)
	List(ctx context.Context, used *bool, limit, offset uint64) ([]*model.InviteCode, error)
	Delete(ctx context.Context, code string) error
	Send(ctx context.Context, code, email string) error
}

var (
	ErrInvalidInviteCount = fmt.Errorf("invite count must be between 1 and %d", MaxInviteBatch)
	ErrInviteCodeNotFound = errors.New("invite code not found")
	ErrInviteCodeUsed     = errors.New("invite code has already been used")
)

type inviteUsecase struct {
	inviteCodeRepo repository.InviteCodeRepository
	mailer         mailer.Sender
	registerURL    string
}

// NewInviteUsecase creates a new InviteUsecase.
func NewInviteUsecase(
	inviteCodeRepo repository.InviteCodeRepository,
	mailer mailer.Sender,
	registerURL string,
) InviteUsecase {
	return &inviteUsecase{
		inviteCodeRepo: inviteCodeRepo,
		mailer:         mailer,
		registerURL:    registerURL,
	}
}

func (u *inviteUsecase) Generate(
	ctx context.Context,
	count int,
	note, createdBy string,
) ([]*model.InviteCode, error) {
	if count < 1 || count > MaxInviteBatch {
		return nil, ErrInvalidInviteCount
	}

	codes := make([]*model.InviteCode, count)
	for i := range codes {
		codes[i] = &model.InviteCode{
			Code:      newInviteCode(),
			Note:      strings.TrimSpace(note),
			CreatedBy: createdBy,
		}
	}

	return u.inviteCodeRepo.CreateCodes(ctx, codes)
}

func (u *inviteUsecase) List(
	ctx context.Context,
	used *bool,
	limit, offset uint64,
) ([]*model.InviteCode, error) {
	return u.inviteCodeRepo.ListCodes(ctx, used, limit, offset)
}

func (u *inviteUsecase) Delete(ctx context.Context, code string) error {
	invite, err := u.lookup(ctx, code)
	if err != nil {
		return err
	}

	if invite.Used {
		return ErrInviteCodeUsed
	}

	if err := u.inviteCodeRepo.DeleteCode(ctx, invite.Code); err != nil {
		if errors.Is(err, repository.ErrInviteCodeUnavailable) {
			return ErrInviteCodeUsed
		}
		return err
	}

	return nil
}

func (u *inviteUsecase) Send(ctx context.Context, code, email string) error {
	invite, err := u.lookup(ctx, code)
	if err != nil {
		return err
	}

	if invite.Used {
		return ErrInviteCodeUsed
	}

	registerLink := fmt.Sprintf("%s?code=%s", u.registerURL, url.QueryEscape(invite.Code))
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>You have been invited to join Formation Hub.</p>
		<p>Your invite code is <strong>%s</strong>. Use the link below to create your account:</p>

		<p><a href="%s">%s</a></p>

		<p>The code can only be used once.</p>

		<p>The Formation Hub Team</p>
	`, invite.Code, registerLink, registerLink)

	return u.mailer.Send(mailer.Email{
		To:       []string{normalizeEmail(email)},
		Subject:  "Your Formation Hub invitation",
		HTMLBody: htmlBody,
	})
}

func (u *inviteUsecase) lookup(ctx context.Context, code string) (*model.InviteCode, error) {
	invite, err := u.inviteCodeRepo.GetCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInviteCodeNotFound
		}
		return nil, err
	}

	return invite, nil
}

// newInviteCode returns a short upper-case code taken from a random UUID.
func newInviteCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:12])
}
