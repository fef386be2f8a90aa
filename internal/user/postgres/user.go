package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/resource"
	resourcePostgres "github.com/frahmantamala/identity-api/internal/resource/postgres"
	"github.com/frahmantamala/identity-api/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&identity.User{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	result := r.db.WithContext(ctx).
		Model(&identity.User{}).
		Where("id = ?", userID).
		Update("password", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return resource.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Upgrade(ctx context.Context, userID string, org *identity.Organization, roleID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			if resourcePostgres.IsDuplicate(err) {
				return fmt.Errorf("%w: %v", resource.ErrDuplicate, err)
			}
			return err
		}

		var granted identity.Role
		if err := tx.Where("id = ?", roleID).First(&granted).Error; err != nil {
			return fmt.Errorf("load role: %w", err)
		}

		u := &identity.User{ID: userID}
		if err := tx.Model(u).Association("Roles").Append(&granted); err != nil {
			return fmt.Errorf("append role: %w", err)
		}

		result := tx.Model(&identity.User{}).
			Where("id = ?", userID).
			Update("organization_id", org.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return resource.ErrNotFound
		}
		return nil
	})
}
