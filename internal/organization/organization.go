package organization

import (
	"context"
	"strings"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/resource"
)

const Path = "/organizations"

// RolesRequiringOwnership may only modify organizations they own.
var RolesRequiringOwnership = []string{identity.RoleGuest, identity.RoleSupplierEditor}

// RepositoryAPI holds the organization lookups used outside the generic store.
// Lookups return (nil, nil) when nothing matches.
type RepositoryAPI interface {
	GetByName(ctx context.Context, name string) (*identity.Organization, error)
	NameTaken(ctx context.Context, name, exceptID string) (bool, error)
}

func NewDefinition(store resource.Store[*identity.Organization], repo RepositoryAPI) resource.Definition[*identity.Organization] {
	return resource.Definition[*identity.Organization]{
		Name:  "organizations",
		Path:  Path,
		New:   func() *identity.Organization { return &identity.Organization{} },
		Store: store,
		Ownership: resource.OwnershipPolicy{
			Required:                true,
			RolesRequiringOwnership: RolesRequiringOwnership,
			OwnershipType:           identity.OwnershipTypeUser,
		},
		Duplicate: internal.ErrOrgNameTaken,
		Hooks: resource.Hooks[*identity.Organization]{
			PreCreate: func(ctx context.Context, org *identity.Organization) error {
				org.Name = strings.TrimSpace(org.Name)
				return validateName(org.Name)
			},
			PreUpdate: func(ctx context.Context, org *identity.Organization) (resource.Outcome[*identity.Organization], error) {
				org.Name = strings.TrimSpace(org.Name)
				if err := validateName(org.Name); err != nil {
					return resource.Aborted[*identity.Organization](err), nil
				}
				taken, err := repo.NameTaken(ctx, org.Name, org.ID)
				if err != nil {
					return resource.Outcome[*identity.Organization]{}, err
				}
				if taken {
					return resource.Aborted[*identity.Organization](internal.ErrOrgNameTaken), nil
				}
				return resource.Continue(org), nil
			},
		},
	}
}

func validateName(name string) error {
	if name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
