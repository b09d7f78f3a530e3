package users

import (
	"context"
	"strings"

	"github.com/quangnv/accountd/model"
	"gorm.io/gorm"
)

// UserRepository is the credential store contract. Lookups on email and
// username are case-insensitive.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByIdentifier returns every user whose email or username matches,
	// ordered by ascending id.
	FindByIdentifier(ctx context.Context, identifier string) ([]*model.User, error)
	// Create inserts the user together with its profile in one atomic unit.
	Create(ctx context.Context, user *model.User) error
	Updates(ctx context.Context, id uint, columns map[string]interface{}) (int64, error)
	UpdateProfile(ctx context.Context, profile *model.Profile) error
}

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Profile").First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIdentifier(ctx context.Context, identifier string) ([]*model.User, error) {
	var found []*model.User
	lowered := strings.ToLower(identifier)
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ? OR LOWER(username) = ?", lowered, lowered).
		Order("id asc").
		Find(&found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	// gorm inserts the Profile association inside the same transaction.
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Updates(ctx context.Context, id uint, columns map[string]interface{}) (int64, error) {
	ret := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(columns)
	return ret.RowsAffected, ret.Error
}

func (r *userRepository) UpdateProfile(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db}
}
