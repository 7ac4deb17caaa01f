package usecase

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/formation-hub/shared/mailer"
	"github.com/vasapolrittideah/formation-hub/shared/provider"
)

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[bson.ObjectID]*model.User
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[bson.ObjectID]*model.User{}}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}

	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.ID] = &copied

	return user, nil
}

func (f *fakeUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	user, ok := f.users[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserRepo) UpdateUser(
	_ context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	user, ok := f.users[objectID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	if params.Role != nil {
		user.Role = *params.Role
	}
	if params.Verified != nil {
		user.Verified = *params.Verified
	}
	if params.Disabled != nil {
		user.Disabled = *params.Disabled
	}
	if params.LastLoginAt != nil {
		user.LastLoginAt = params.LastLoginAt
	}

	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) ListUsers(_ context.Context, params repository.FilterUsersParams) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	users := make([]*model.User, 0)
	for _, user := range f.users {
		if params.Role != nil && user.Role != *params.Role {
			continue
		}
		copied := *user
		users = append(users, &copied)
	}
	return users, nil
}

func (f *fakeUserRepo) CountUsers(ctx context.Context, params repository.FilterUsersParams) (int64, error) {
	users, err := f.ListUsers(ctx, params)
	return int64(len(users)), err
}

type fakeIdentityRepo struct {
	mu         sync.Mutex
	identities []*model.Identity
}

func (f *fakeIdentityRepo) CreateIdentity(_ context.Context, identity *model.Identity) (*model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	identity.ID = bson.NewObjectID()
	f.identities = append(f.identities, identity)
	return identity, nil
}

func (f *fakeIdentityRepo) ListProviders(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	providers := make([]string, 0)
	for _, identity := range f.identities {
		if identity.UserID == userID && !slices.Contains(providers, identity.Provider) {
			providers = append(providers, identity.Provider)
		}
	}
	return providers, nil
}

func (f *fakeIdentityRepo) GetIdentityByProvider(
	_ context.Context,
	providerID, providerName string,
) (*model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, identity := range f.identities {
		if identity.ProviderID == providerID && identity.Provider == providerName {
			return identity, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeIdentityRepo) UpdateLastLogin(context.Context, string, string) error {
	return nil
}

type fakeInviteCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*model.InviteCode
}

func newFakeInviteCodeRepo(codes ...string) *fakeInviteCodeRepo {
	f := &fakeInviteCodeRepo{codes: map[string]*model.InviteCode{}}
	for _, code := range codes {
		f.codes[code] = &model.InviteCode{ID: bson.NewObjectID(), Code: code}
	}
	return f
}

func (f *fakeInviteCodeRepo) CreateCodes(_ context.Context, codes []*model.InviteCode) ([]*model.InviteCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, code := range codes {
		code.ID = bson.NewObjectID()
		f.codes[code.Code] = code
	}
	return codes, nil
}

func (f *fakeInviteCodeRepo) GetCode(_ context.Context, code string) (*model.InviteCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	invite, ok := f.codes[code]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *invite
	return &copied, nil
}

func (f *fakeInviteCodeRepo) ListCodes(_ context.Context, used *bool, _, _ uint64) ([]*model.InviteCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	codes := make([]*model.InviteCode, 0)
	for _, invite := range f.codes {
		if used == nil || invite.Used == *used {
			codes = append(codes, invite)
		}
	}
	return codes, nil
}

func (f *fakeInviteCodeRepo) ConsumeCode(
	_ context.Context,
	code string,
	userID bson.ObjectID,
) (*model.InviteCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	invite, ok := f.codes[code]
	if !ok || invite.Used {
		return nil, repository.ErrInviteCodeUnavailable
	}

	now := time.Now()
	invite.Used = true
	invite.UsedBy = &userID
	invite.UsedAt = &now
	return invite, nil
}

func (f *fakeInviteCodeRepo) ReleaseCode(_ context.Context, code string, userID bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	invite, ok := f.codes[code]
	if ok && invite.Used && invite.UsedBy != nil && *invite.UsedBy == userID {
		invite.Used = false
		invite.UsedBy = nil
		invite.UsedAt = nil
	}
	return nil
}

func (f *fakeInviteCodeRepo) DeleteCode(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	invite, ok := f.codes[code]
	if !ok || invite.Used {
		return repository.ErrInviteCodeUnavailable
	}
	delete(f.codes, code)
	return nil
}

type fakeResetTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*model.PasswordResetToken
}

func newFakeResetTokenRepo() *fakeResetTokenRepo {
	return &fakeResetTokenRepo{tokens: map[string]*model.PasswordResetToken{}}
}

func (f *fakeResetTokenRepo) CreateToken(
	_ context.Context,
	token *model.PasswordResetToken,
) (*model.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	token.ID = bson.NewObjectID()
	f.tokens[token.JTI] = token
	return token, nil
}

func (f *fakeResetTokenRepo) GetTokenByJTI(_ context.Context, jti string) (*model.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	token, ok := f.tokens[jti]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *token
	return &copied, nil
}

func (f *fakeResetTokenRepo) ConsumeToken(_ context.Context, jti string) (*model.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	token, ok := f.tokens[jti]
	if !ok || token.Used || !token.ExpiresAt.After(time.Now()) {
		return nil, repository.ErrResetTokenUnavailable
	}
	now := time.Now()
	token.Used = true
	token.UsedAt = &now
	copied := *token
	return &copied, nil
}

func (f *fakeResetTokenRepo) InvalidateUserTokens(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, token := range f.tokens {
		if token.UserID.Hex() == userID {
			token.Used = true
		}
	}
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Email
	err  error
}

func (f *fakeMailer) Send(email mailer.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeGoogle struct {
	identity *provider.GoogleIdentity
	err      error
}

func (f *fakeGoogle) ValidateIDToken(context.Context, string) (*provider.GoogleIdentity, error) {
	return f.identity, f.err
}
