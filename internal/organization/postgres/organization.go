package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/organization"
	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

var _ organization.RepositoryAPI = (*OrganizationRepository)(nil)

func (r *OrganizationRepository) GetByName(ctx context.Context, name string) (*identity.Organization, error) {
	var org identity.Organization
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) NameTaken(ctx context.Context, name, exceptID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&identity.Organization{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
