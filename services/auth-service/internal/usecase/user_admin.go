package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/formation-hub/shared/auth"
)

// UserAdminUsecase lets admins inspect and manage accounts.
type UserAdminUsecase interface {
	List(ctx context.Context, params repository.FilterUsersParams) ([]*model.User, int64, error)
	Get(ctx context.Context, id string) (*UserDetail, error)
	Update(ctx context.Context, actorID, id string, params AdminUpdateUserParams) (*model.User, error)
}

// UserDetail is a user together with the providers they can sign in with.
type UserDetail struct {
	User      *model.User
	Providers []string
}

// AdminUpdateUserParams holds the account flags an admin may change.
type AdminUpdateUserParams struct {
	Role     *auth.Role
	Verified *bool
	Disabled *bool
}

var (
	ErrInvalidRole      = errors.New("invalid role")
	ErrCannotModifySelf = errors.New("admins cannot change their own role or disable themselves")
)

type userAdminUsecase struct {
	userRepo     repository.UserRepository
	identityRepo repository.IdentityRepository
}

// NewUserAdminUsecase creates a new UserAdminUsecase.
func NewUserAdminUsecase(
	userRepo repository.UserRepository,
	identityRepo repository.IdentityRepository,
) UserAdminUsecase {
	return &userAdminUsecase{userRepo: userRepo, identityRepo: identityRepo}
}

func (u *userAdminUsecase) List(
	ctx context.Context,
	params repository.FilterUsersParams,
) ([]*model.User, int64, error) {
	if params.Role != nil && !params.Role.Valid() {
		return nil, 0, ErrInvalidRole
	}

	users, err := u.userRepo.ListUsers(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	total, err := u.userRepo.CountUsers(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (u *userAdminUsecase) Get(ctx context.Context, id string) (*UserDetail, error) {
	user, err := u.user(ctx, id)
	if err != nil {
		return nil, err
	}

	providers, err := u.identityRepo.ListProviders(ctx, user.ID.Hex())
	if err != nil {
		return nil, err
	}

	return &UserDetail{User: user, Providers: providers}, nil
}

func (u *userAdminUsecase) user(ctx context.Context, id string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

func (u *userAdminUsecase) Update(
	ctx context.Context,
	actorID, id string,
	params AdminUpdateUserParams,
) (*model.User, error) {
	if params.Role != nil && !params.Role.Valid() {
		return nil, ErrInvalidRole
	}

	// An admin locking themselves out would leave nobody able to undo it.
	if actorID == id {
		if params.Role != nil && *params.Role != auth.RoleAdmin {
			return nil, ErrCannotModifySelf
		}
		if params.Disabled != nil && *params.Disabled {
			return nil, ErrCannotModifySelf
		}
	}

	if params.Role == nil && params.Verified == nil && params.Disabled == nil {
		return u.user(ctx, id)
	}

	user, err := u.userRepo.UpdateUser(ctx, id, repository.UpdateUserParams{
		Role:     params.Role,
		Verified: params.Verified,
		Disabled: params.Disabled,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}
