package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/registration"
	"github.com/frahmantamala/identity-api/internal/resource"
	resourcePostgres "github.com/frahmantamala/identity-api/internal/resource/postgres"
	"gorm.io/gorm"
)

type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) registration.RepositoryAPI {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) GuestOrganization(ctx context.Context) (*identity.Organization, error) {
	var org identity.Organization
	err := r.db.WithContext(ctx).Where("type = ?", identity.OrganizationTypeGuest).First(&org).Error
	return firstOrNil(&org, err)
}

func (r *RegistrationRepository) GuestRole(ctx context.Context) (*identity.Role, error) {
	var role identity.Role
	err := r.db.WithContext(ctx).Where("name = ?", identity.RoleGuest).First(&role).Error
	return firstOrNil(&role, err)
}

func (r *RegistrationRepository) FindUserByEmail(ctx context.Context, email string) (*identity.User, error) {
	var u identity.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	return firstOrNil(&u, err)
}

func (r *RegistrationRepository) CreateUser(ctx context.Context, u *identity.User, verification *identity.EmailVerification, confirm func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// roles are referenced, never upserted
		if err := tx.Omit("Roles.*").Create(u).Error; err != nil {
			if resourcePostgres.IsDuplicate(err) {
				return fmt.Errorf("%w: %v", resource.ErrDuplicate, err)
			}
			return err
		}
		if err := tx.Create(verification).Error; err != nil {
			return fmt.Errorf("create email verification: %w", err)
		}
		if confirm != nil {
			return confirm(ctx)
		}
		return nil
	})
}

func (r *RegistrationRepository) GetVerification(ctx context.Context, id string) (*identity.EmailVerification, error) {
	var v identity.EmailVerification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error
	return firstOrNil(&v, err)
}

func (r *RegistrationRepository) MarkEmailVerified(ctx context.Context, verification *identity.EmailVerification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&identity.EmailVerification{}).
			Where("id = ?", verification.ID).
			Update("is_verified", true).Error; err != nil {
			return err
		}
		result := tx.Model(&identity.User{}).
			Where("id = ?", verification.UserID).
			Update("is_email_verified", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return resource.ErrNotFound
		}
		verification.IsVerified = true
		return nil
	})
}

func (r *RegistrationRepository) CreateResetToken(ctx context.Context, token *identity.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *RegistrationRepository) GetResetToken(ctx context.Context, id string) (*identity.PasswordResetToken, error) {
	var t identity.PasswordResetToken
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	return firstOrNil(&t, err)
}

func (r *RegistrationRepository) ResetPassword(ctx context.Context, token *identity.PasswordResetToken, hash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		consumed := tx.Model(&identity.PasswordResetToken{}).
			Where("id = ? AND is_used = ?", token.ID, false).
			Update("is_used", true)
		if consumed.Error != nil {
			return consumed.Error
		}
		if consumed.RowsAffected == 0 {
			return resource.ErrNotFound
		}

		result := tx.Model(&identity.User{}).
			Where("id = ?", token.UserID).
			Update("password", hash)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return resource.ErrNotFound
		}
		token.IsUsed = true
		return nil
	})
}

func firstOrNil[T any](rec *T, err error) (*T, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}
