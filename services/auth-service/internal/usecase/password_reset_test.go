package usecase

import (
	"context"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/formation-hub/shared/auth"
	"github.com/vasapolrittideah/formation-hub/shared/security"
)

var resetLinkPattern = regexp.MustCompile(`href="([^"]+)"`)

type resetFixture struct {
	users   *fakeUserRepo
	tokens  *fakeResetTokenRepo
	mail    *fakeMailer
	usecase PasswordResetUsecase
	now     time.Time
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()

	f := &resetFixture{
		users:  newFakeUserRepo(),
		tokens: newFakeResetTokenRepo(),
		mail:   &fakeMailer{},
		now:    time.Now(),
	}

	signer, err := auth.NewJWTAuthenticator(
		auth.TokenConfig{
			Secret:   "reset-secret",
			Issuer:   "formation-hub",
			Audience: "formation-hub/password-reset",
			TTL:      30 * time.Minute,
		},
		auth.WithClock(func() time.Time { return f.now }),
	)
	require.NoError(t, err)

	f.usecase = NewPasswordResetUsecase(f.users, f.tokens, signer, f.mail, "http://localhost:3000/reset-password")

	return f
}

// lastToken pulls the reset token out of the most recent email.
func (f *resetFixture) lastToken(t *testing.T) string {
	t.Helper()

	require.NotEmpty(t, f.mail.sent)
	match := resetLinkPattern.FindStringSubmatch(f.mail.sent[len(f.mail.sent)-1].HTMLBody)
	require.Len(t, match, 2)

	link, err := url.Parse(match[1])
	require.NoError(t, err)

	return link.Query().Get("token")
}

func TestRequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	f := newResetFixture(t)

	require.NoError(t, f.usecase.RequestPasswordReset(context.Background(), "nobody@example.com", "127.0.0.1"))
	assert.Zero(t, f.mail.count())
}

func TestResetPassword_FullFlow(t *testing.T) {
	f := newResetFixture(t)
	users := &authFixture{users: f.users}
	user := users.seedUser(t, "reset@example.com", "oldpass1", auth.RoleUser)

	require.NoError(t, f.usecase.RequestPasswordReset(context.Background(), "Reset@Example.com", "127.0.0.1"))
	require.Equal(t, 1, f.mail.count())
	token := f.lastToken(t)

	require.NoError(t, f.usecase.ValidatePasswordResetToken(context.Background(), token))
	require.NoError(t, f.usecase.ResetPassword(context.Background(), token, "newpass1"))

	stored, err := f.users.GetUser(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	ok, err := security.VerifyPassword("newpass1", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	err = f.usecase.ResetPassword(context.Background(), token, "another1")
	require.ErrorIs(t, err, ErrTokenAlreadyUsed)
	require.ErrorIs(t, f.usecase.ValidatePasswordResetToken(context.Background(), token), ErrTokenAlreadyUsed)
}

func TestRequestPasswordReset_NewLinkInvalidatesOld(t *testing.T) {
	f := newResetFixture(t)
	users := &authFixture{users: f.users}
	users.seedUser(t, "reset@example.com", "oldpass1", auth.RoleUser)

	require.NoError(t, f.usecase.RequestPasswordReset(context.Background(), "reset@example.com", ""))
	first := f.lastToken(t)

	require.NoError(t, f.usecase.RequestPasswordReset(context.Background(), "reset@example.com", ""))
	second := f.lastToken(t)

	require.ErrorIs(t, f.usecase.ResetPassword(context.Background(), first, "newpass1"), ErrTokenAlreadyUsed)
	require.NoError(t, f.usecase.ResetPassword(context.Background(), second, "newpass1"))
}

func TestResetPassword_ExpiredLink(t *testing.T) {
	f := newResetFixture(t)
	users := &authFixture{users: f.users}
	users.seedUser(t, "reset@example.com", "oldpass1", auth.RoleUser)

	require.NoError(t, f.usecase.RequestPasswordReset(context.Background(), "reset@example.com", ""))
	token := f.lastToken(t)

	f.now = f.now.Add(time.Hour)

	require.ErrorIs(t, f.usecase.ResetPassword(context.Background(), token, "newpass1"), ErrTokenExpired)
}

func TestResetPassword_GarbageToken(t *testing.T) {
	f := newResetFixture(t)

	require.ErrorIs(t, f.usecase.ResetPassword(context.Background(), "garbage", "newpass1"), ErrInvalidToken)
	require.ErrorIs(t, f.usecase.ValidatePasswordResetToken(context.Background(), ""), ErrInvalidToken)
}
