package web

import (
	"context"

	"github.com/quangnv/accountd/internal/users"
	"github.com/quangnv/accountd/model"
)

type UserService interface {
	GetUserByID(ctx context.Context, userID uint) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	Register(ctx context.Context, opts users.RegisterOptions) (*model.User, error)
	Authenticate(ctx context.Context, identifier string, password string) (*model.User, error)
	RecordLogin(ctx context.Context, user *model.User) error
	Activate(ctx context.Context, uid string, token string) (*model.User, error)
	GetUserForReset(ctx context.Context, uid string, token string) (*model.User, error)
	ActivationToken(user *model.User) string
	ResetToken(user *model.User) string
	UpdatePassword(ctx context.Context, userID uint, newPassword string) error
	UpdateProfile(ctx context.Context, user *model.User, opts users.ProfileOptions) error
}
