package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/formation-hub/shared/auth"
	"github.com/vasapolrittideah/formation-hub/shared/provider"
	"github.com/vasapolrittideah/formation-hub/shared/security"
)

type authFixture struct {
	users      *fakeUserRepo
	identities *fakeIdentityRepo
	invites    *fakeInviteCodeRepo
	mail       *fakeMailer
	google     *fakeGoogle
	tokens     *auth.JWTAuthenticator
	usecase    AuthUsecase
}

func newAuthFixture(t *testing.T, codes ...string) *authFixture {
	t.Helper()

	tokens, err := auth.NewJWTAuthenticator(auth.TokenConfig{Secret: "test-secret", Issuer: "formation-hub"})
	require.NoError(t, err)

	logger := zerolog.Nop()
	f := &authFixture{
		users:      newFakeUserRepo(),
		identities: &fakeIdentityRepo{},
		invites:    newFakeInviteCodeRepo(codes...),
		mail:       &fakeMailer{},
		google:     &fakeGoogle{},
		tokens:     tokens,
	}
	f.usecase = NewAuthUsecase(
		f.users, f.identities, f.invites, tokens, f.google, f.mail, &logger, "http://localhost:3000",
	)

	return f
}

func (f *authFixture) seedUser(t *testing.T, email, password string, role auth.Role) *model.User {
	t.Helper()

	hash, err := security.HashPassword(password)
	require.NoError(t, err)

	user, err := f.users.CreateUser(context.Background(), &model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	require.NoError(t, err)

	return user
}

func TestRegister_ConsumesInviteAndIssuesUserToken(t *testing.T) {
	f := newAuthFixture(t, "WELCOME1")

	result, err := f.usecase.Register(context.Background(), RegisterParams{
		Email:      "  New@Example.com ",
		Password:   "hunter22",
		Name:       "New User",
		InviteCode: "WELCOME1",
	})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", result.User.Email)
	assert.Equal(t, auth.RoleUser, result.User.Role)
	assert.Equal(t, "userToken", result.TokenKey)
	assert.Equal(t, 1, f.mail.count())

	claims, err := f.tokens.VerifyToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID.Hex(), claims.UserID)
	assert.Equal(t, auth.RoleUser, claims.Role)

	invite, err := f.invites.GetCode(context.Background(), "WELCOME1")
	require.NoError(t, err)
	assert.True(t, invite.Used)
	require.NotNil(t, invite.UsedBy)
	assert.Equal(t, result.User.ID, *invite.UsedBy)

	providers, err := f.identities.ListProviders(context.Background(), result.User.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{model.ProviderEmail}, providers)
}

func TestRegister_UnknownOrUsedInvite(t *testing.T) {
	f := newAuthFixture(t, "ONCE")

	_, err := f.usecase.Register(context.Background(), RegisterParams{
		Email: "a@example.com", Password: "hunter22", InviteCode: "NOPE",
	})
	require.ErrorIs(t, err, ErrInvalidInviteCode)

	_, err = f.usecase.Register(context.Background(), RegisterParams{
		Email: "a@example.com", Password: "hunter22", InviteCode: "ONCE",
	})
	require.NoError(t, err)

	_, err = f.usecase.Register(context.Background(), RegisterParams{
		Email: "b@example.com", Password: "hunter22", InviteCode: "ONCE",
	})
	require.ErrorIs(t, err, ErrInvalidInviteCode)
}

func TestRegister_ExistingEmailKeepsInvite(t *testing.T) {
	f := newAuthFixture(t, "KEEP")
	f.seedUser(t, "taken@example.com", "hunter22", auth.RoleUser)

	_, err := f.usecase.Register(context.Background(), RegisterParams{
		Email: "taken@example.com", Password: "hunter22", InviteCode: "KEEP",
	})
	require.ErrorIs(t, err, ErrUserAlreadyExists)

	invite, err := f.invites.GetCode(context.Background(), "KEEP")
	require.NoError(t, err)
	assert.False(t, invite.Used)
}

func TestRegister_ReleasesInviteWhenCreateFails(t *testing.T) {
	f := newAuthFixture(t, "RETRY")
	f.users.createErr = errors.New("write failed")

	_, err := f.usecase.Register(context.Background(), RegisterParams{
		Email: "a@example.com", Password: "hunter22", InviteCode: "RETRY",
	})
	require.Error(t, err)

	invite, err := f.invites.GetCode(context.Background(), "RETRY")
	require.NoError(t, err)
	assert.False(t, invite.Used)
	assert.Nil(t, invite.UsedBy)
}

func TestRegister_ConcurrentUseOfOneInvite(t *testing.T) {
	f := newAuthFixture(t, "RACE")

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	for i := range 4 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.usecase.Register(context.Background(), RegisterParams{
				Email:      string(rune('a'+i)) + "@example.com",
				Password:   "hunter22",
				InviteCode: "RACE",
			})
			if err == nil {
				successes.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
}

func TestRegister_WelcomeMailFailureIsNotFatal(t *testing.T) {
	f := newAuthFixture(t, "MAIL")
	f.mail.err = errors.New("smtp down")

	result, err := f.usecase.Register(context.Background(), RegisterParams{
		Email: "a@example.com", Password: "hunter22", InviteCode: "MAIL",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "admin@example.com", "adminpass", auth.RoleAdmin)
	disabled := f.seedUser(t, "gone@example.com", "gonepass", auth.RoleUser)
	d := true
	_, err := f.users.UpdateUser(context.Background(), disabled.ID.Hex(), repository.UpdateUserParams{Disabled: &d})
	require.NoError(t, err)

	t.Run("admin receives adminToken key", func(t *testing.T) {
		result, err := f.usecase.Login(context.Background(), LoginParams{
			Email: "ADMIN@example.com", Password: "adminpass",
		})
		require.NoError(t, err)
		assert.Equal(t, "adminToken", result.TokenKey)
		assert.NotNil(t, result.User.LastLoginAt)

		claims, err := f.tokens.VerifyToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.usecase.Login(context.Background(), LoginParams{
			Email: "admin@example.com", Password: "nope",
		})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.usecase.Login(context.Background(), LoginParams{
			Email: "who@example.com", Password: "adminpass",
		})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		_, err := f.usecase.Login(context.Background(), LoginParams{
			Email: "gone@example.com", Password: "gonepass",
		})
		require.ErrorIs(t, err, ErrAccountDisabled)
	})
}

func TestLoginWithGoogle(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "member@example.com", "memberpass", auth.RoleUser)

	t.Run("unknown email is rejected", func(t *testing.T) {
		f.google.identity = &provider.GoogleIdentity{UserID: "g-1", Email: "stranger@example.com"}
		_, err := f.usecase.LoginWithGoogle(context.Background(), "id-token")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("links identity on first sign-in", func(t *testing.T) {
		f.google.identity = &provider.GoogleIdentity{UserID: "g-2", Email: "member@example.com"}
		result, err := f.usecase.LoginWithGoogle(context.Background(), "id-token")
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)
		assert.True(t, result.User.Verified)

		identity, err := f.identities.GetIdentityByProvider(context.Background(), "g-2", model.ProviderGoogle)
		require.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), identity.UserID)
	})

	t.Run("reuses linked identity", func(t *testing.T) {
		result, err := f.usecase.LoginWithGoogle(context.Background(), "id-token")
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)
	})

	t.Run("rejected token", func(t *testing.T) {
		f.google.err = provider.ErrInvalidGoogleAudience
		_, err := f.usecase.LoginWithGoogle(context.Background(), "id-token")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUpdateProfile(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedUser(t, "me@example.com", "oldpass1", auth.RoleUser)

	name := "Renamed"
	updated, err := f.usecase.UpdateProfile(context.Background(), user.ID.Hex(), UpdateProfileParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	_, err = f.usecase.UpdateProfile(context.Background(), user.ID.Hex(), UpdateProfileParams{
		CurrentPassword: "wrong", NewPassword: "newpass1",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.usecase.UpdateProfile(context.Background(), user.ID.Hex(), UpdateProfileParams{
		CurrentPassword: "oldpass1", NewPassword: "newpass1",
	})
	require.NoError(t, err)

	_, err = f.usecase.Login(context.Background(), LoginParams{Email: "me@example.com", Password: "newpass1"})
	require.NoError(t, err)
}

func TestMe_UnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.usecase.Me(context.Background(), "not-an-id")
	require.ErrorIs(t, err, ErrUserNotFound)
}
