package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"gorm.io/gorm"
)

// Repository answers the credential queries of the authentication engine.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetUserByEmail loads the user with roles for a password check.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*identity.User, error) {
	var user identity.User
	err := r.db.WithContext(ctx).Preload("Roles").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, userID string) (*identity.User, error) {
	var user identity.User
	err := r.db.WithContext(ctx).Preload("Roles").Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) ClearTokenExpired(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&identity.User{}).
		Where("id = ?", userID).
		Update("is_token_expired", false).Error
}
