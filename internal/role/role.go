// Package role configures the admin-only role resource.
package role

import (
	"context"
	"strings"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/resource"
)

const Path = "/roles"

// RepositoryAPI looks roles up by name; (nil, nil) when absent.
type RepositoryAPI interface {
	GetByName(ctx context.Context, name string) (*identity.Role, error)
}

func NewDefinition(store resource.Store[*identity.Role]) resource.Definition[*identity.Role] {
	return resource.Definition[*identity.Role]{
		Name:               "roles",
		Path:               Path,
		New:                func() *identity.Role { return &identity.Role{} },
		Store:              store,
		Populate:           []string{"Permissions"},
		DeleteAssociations: []string{"Permissions"},
		Duplicate:          internal.ErrDuplicateRecord,
		Hooks: resource.Hooks[*identity.Role]{
			PreCreate: func(ctx context.Context, r *identity.Role) error {
				r.Name = strings.TrimSpace(r.Name)
				if r.Name == "" {
					return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
				}
				return nil
			},
		},
	}
}
