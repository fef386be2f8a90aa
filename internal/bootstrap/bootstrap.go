// Package bootstrap seeds the records the service cannot run without: the
// permission set, the fixed roles, the system and guest organizations and
// the system user.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/core/ids"
	"github.com/frahmantamala/identity-api/internal/organization"
	"github.com/frahmantamala/identity-api/internal/permission"
	"github.com/frahmantamala/identity-api/internal/resource"
	"github.com/frahmantamala/identity-api/internal/role"
	"github.com/frahmantamala/identity-api/internal/user"
	"gorm.io/gorm"
)

type roleSeed struct {
	Name        string
	Description string
}

var roles = []roleSeed{
	{identity.RoleAdmin, "administrator"},
	{identity.RoleGuest, "guest"},
	{identity.RoleImpersonator, "impersonator"},
	{identity.RoleSupplierOwner, "supplier owner access to sensitive info"},
	{identity.RoleSupplierEditor, "supplier employee no access to sensitive info"},
	{identity.RoleProductAdmin, "product administrator"},
	{identity.RoleProductEditor, "product editor"},
}

// Result reports what a Seed call inserted.
type Result struct {
	Permissions   int
	Roles         int
	Organizations int
	Users         int
}

func (r Result) Empty() bool {
	return r.Permissions+r.Roles+r.Organizations+r.Users == 0
}

type Seeder struct {
	db         *gorm.DB
	cfg        internal.BootstrapConfig
	bcryptCost int
	logger     *slog.Logger
}

func NewSeeder(db *gorm.DB, cfg internal.BootstrapConfig, bcryptCost int, logger *slog.Logger) *Seeder {
	return &Seeder{db: db, cfg: cfg, bcryptCost: bcryptCost, logger: logger}
}

// Seed inserts whatever is missing in one transaction. Running it against a
// seeded database changes nothing.
func (s *Seeder) Seed(ctx context.Context) (Result, error) {
	var res Result

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		perms, err := s.ensurePermissions(tx, &res)
		if err != nil {
			return err
		}

		seeded := make(map[string]*identity.Role, len(roles))
		for _, r := range roles {
			found, err := s.ensureRole(tx, r, perms, &res)
			if err != nil {
				return err
			}
			seeded[r.Name] = found
		}

		systemOrg, err := s.ensureOrganization(tx, identity.SystemOrganizationName, identity.OrganizationTypeSystem, true, &res)
		if err != nil {
			return err
		}
		if _, err := s.ensureOrganization(tx, identity.GuestOrganizationName, identity.OrganizationTypeGuest, false, &res); err != nil {
			return err
		}

		return s.ensureSystemUser(tx, systemOrg, seeded[identity.RoleAdmin], &res)
	})
	if err != nil {
		return Result{}, fmt.Errorf("bootstrap: %w", err)
	}

	if res.Empty() {
		s.logger.Debug("bootstrap: database already seeded")
	} else {
		s.logger.Info("bootstrap: database seeded",
			"permissions", res.Permissions,
			"roles", res.Roles,
			"organizations", res.Organizations,
			"users", res.Users)
	}
	return res, nil
}

func (s *Seeder) ensurePermissions(tx *gorm.DB, res *Result) ([]identity.Permission, error) {
	perms := make([]identity.Permission, 0, len(permission.Names))
	for _, name := range permission.Names {
		var p identity.Permission
		err := tx.Where("name = ?", name).First(&p).Error
		if err == nil {
			perms = append(perms, p)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		p = identity.Permission{
			ID:          ids.New(),
			Name:        name,
			Value:       name,
			Description: "ability to " + name,
		}
		p.Href = resource.APIPrefix + permission.Path + "/" + p.ID
		if err := tx.Create(&p).Error; err != nil {
			return nil, fmt.Errorf("create permission %s: %w", name, err)
		}
		res.Permissions++
		perms = append(perms, p)
	}
	return perms, nil
}

// ensureRole creates the role with every permission. Existing roles keep
// the permissions an admin gave them.
func (s *Seeder) ensureRole(tx *gorm.DB, seed roleSeed, perms []identity.Permission, res *Result) (*identity.Role, error) {
	var r identity.Role
	err := tx.Where("name = ?", seed.Name).First(&r).Error
	if err == nil {
		return &r, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	r = identity.Role{
		ID:          ids.New(),
		Name:        seed.Name,
		Description: seed.Description,
		Permissions: perms,
	}
	r.Href = resource.APIPrefix + role.Path + "/" + r.ID
	if err := tx.Omit("Permissions.*").Create(&r).Error; err != nil {
		return nil, fmt.Errorf("create role %s: %w", seed.Name, err)
	}
	res.Roles++
	return &r, nil
}

func (s *Seeder) ensureOrganization(tx *gorm.DB, name string, orgType identity.OrganizationType, isSystem bool, res *Result) (*identity.Organization, error) {
	var org identity.Organization
	err := tx.Where("type = ?", orgType).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	org = identity.Organization{
		ID:       ids.New(),
		Name:     name,
		Type:     orgType,
		IsSystem: isSystem,
	}
	org.Href = resource.APIPrefix + organization.Path + "/" + org.ID
	if err := tx.Create(&org).Error; err != nil {
		return nil, fmt.Errorf("create organization %s: %w", name, err)
	}
	res.Organizations++
	return &org, nil
}

func (s *Seeder) ensureSystemUser(tx *gorm.DB, systemOrg *identity.Organization, admin *identity.Role, res *Result) error {
	email := auth.NormalizeEmail(s.cfg.SystemUserEmail)

	var count int64
	if err := tx.Model(&identity.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	u := &identity.User{
		ID:             ids.New(),
		Email:          email,
		Password:       s.cfg.SystemUserPassword,
		FirstName:      "system",
		LastName:       "system",
		OrganizationID: systemOrg.ID,
		Roles:          []identity.Role{*admin},
		IsActive:       true,
		// the system account never goes through email validation
		IsEmailVerified: true,
	}
	if err := user.Prepare(u, s.bcryptCost); err != nil {
		return fmt.Errorf("system user: %w", err)
	}
	u.Href = resource.APIPrefix + user.Path + "/" + u.ID
	u.Ownerships = identity.Ownerships{{OwnerID: u.ID, OwnershipType: identity.OwnershipTypeUser}}

	if err := tx.Omit("Roles.*").Create(u).Error; err != nil {
		return fmt.Errorf("create system user: %w", err)
	}
	res.Users++
	return nil
}
