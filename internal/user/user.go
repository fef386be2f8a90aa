package user

import (
	"context"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/internal/core/common/validation"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/resource"
)

const Path = "/users"

// RolesRequiringOwnership may only modify the user records they own.
var RolesRequiringOwnership = []string{identity.RoleGuest, identity.RoleSupplierEditor}

// UpgradeRoles are the only roles a user can be upgraded to.
var UpgradeRoles = []string{identity.RoleSupplierEditor}

// RepositoryAPI holds the user writes that bypass the generic store.
type RepositoryAPI interface {
	EmailTaken(ctx context.Context, email, exceptID string) (bool, error)
	UpdatePassword(ctx context.Context, userID, hash string) error
	// Upgrade creates org, adds the role and moves the user into org in one
	// transaction.
	Upgrade(ctx context.Context, userID string, org *identity.Organization, roleID string) error
}

func NewDefinition(store resource.Store[*identity.User], repo RepositoryAPI, bcryptCost int) resource.Definition[*identity.User] {
	return resource.Definition[*identity.User]{
		Name:     "users",
		Path:     Path,
		New:      func() *identity.User { return &identity.User{} },
		Store:    store,
		Populate: []string{"Roles.Permissions"},
		Ownership: resource.OwnershipPolicy{
			Required:                true,
			RolesRequiringOwnership: RolesRequiringOwnership,
			OwnershipType:           identity.OwnershipTypeUser,
		},
		OmitOnUpdate:       []string{"password"},
		DeleteAssociations: []string{"Roles"},
		Duplicate:          internal.ErrEmailTaken,
		Hooks: resource.Hooks[*identity.User]{
			PreCreate: func(ctx context.Context, u *identity.User) error {
				if err := Prepare(u, bcryptCost); err != nil {
					return err
				}
				u.IsActive = true
				return nil
			},
			PreUpdate: func(ctx context.Context, u *identity.User) (resource.Outcome[*identity.User], error) {
				u.Email = auth.NormalizeEmail(u.Email)
				if err := validation.ValidateEmail(u.Email); err != nil {
					return resource.Aborted[*identity.User](err), nil
				}
				taken, err := repo.EmailTaken(ctx, u.Email, u.ID)
				if err != nil {
					return resource.Outcome[*identity.User]{}, err
				}
				if taken {
					return resource.Aborted[*identity.User](internal.ErrEmailTaken), nil
				}
				return resource.Continue(u), nil
			},
			PreSend: Sanitize,
		},
	}
}

// Prepare normalizes the email, checks the credentials and replaces the
// plain password with its bcrypt hash.
func Prepare(u *identity.User, bcryptCost int) error {
	u.Email = auth.NormalizeEmail(u.Email)
	if err := validation.ValidateEmail(u.Email); err != nil {
		return err
	}
	if err := validation.ValidatePassword(u.Password); err != nil {
		return err
	}

	hash, err := auth.HashPassword(u.Password, bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}
	u.Password = hash
	return nil
}

// Sanitize blanks the password hash before a user leaves the service.
func Sanitize(u *identity.User) *identity.User {
	if u != nil {
		u.Password = ""
	}
	return u
}
