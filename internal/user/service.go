package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/internal/core/common/validation"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/core/events"
	"github.com/frahmantamala/identity-api/internal/core/ids"
	"github.com/frahmantamala/identity-api/internal/organization"
	"github.com/frahmantamala/identity-api/internal/resource"
	"github.com/frahmantamala/identity-api/internal/role"
)

var (
	errUpgradeUserMissing = internal.NewValidationError("Could not find a user with that userID", internal.ErrCodeValidationFailed)
	errUpgradeRoleMissing = internal.NewValidationError("Could not find a role with that name", internal.ErrCodeValidationFailed)
)

type ServiceAPI interface {
	Get(ctx context.Context, id string) (*identity.User, error)
	UpdateProfile(ctx context.Context, token *auth.TokenPayload, id string, dto UpdateProfileDTO) (*identity.User, error)
	UpdatePassword(ctx context.Context, token *auth.TokenPayload, id string, dto UpdatePasswordDTO) (*identity.User, error)
	Upgrade(ctx context.Context, req UpgradeRequest) (*UpgradeResponse, error)
}

type Service struct {
	users      *resource.Service[*identity.User]
	repo       RepositoryAPI
	orgs       organization.RepositoryAPI
	roles      role.RepositoryAPI
	events     events.Publisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(
	users *resource.Service[*identity.User],
	repo RepositoryAPI,
	orgs organization.RepositoryAPI,
	roles role.RepositoryAPI,
	publisher events.Publisher,
	bcryptCost int,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:      users,
		repo:       repo,
		orgs:       orgs,
		roles:      roles,
		events:     publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) Get(ctx context.Context, id string) (*identity.User, error) {
	return s.users.Single(ctx, id)
}

// UpdateProfile goes through the generic update path so ownership and the
// email uniqueness hook apply, but only touches the profile fields.
func (s *Service) UpdateProfile(ctx context.Context, token *auth.TokenPayload, id string, dto UpdateProfileDTO) (*identity.User, error) {
	return s.users.Update(ctx, token, id, func(u *identity.User) error {
		if dto.FirstName != nil {
			u.FirstName = *dto.FirstName
		}
		if dto.LastName != nil {
			u.LastName = *dto.LastName
		}
		if dto.Email != nil {
			u.Email = *dto.Email
		}
		if dto.Phone != nil {
			u.Phone = *dto.Phone
		}
		return nil
	})
}

// UpdatePassword replaces the password of a user the caller may modify. It
// does not revoke other sessions.
func (s *Service) UpdatePassword(ctx context.Context, token *auth.TokenPayload, id string, dto UpdatePasswordDTO) (*identity.User, error) {
	u, err := s.users.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.users.Authorize(token, u); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(dto.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		s.logger.ErrorContext(ctx, "UpdatePassword: store failed", "user_id", id, "error", err)
		return nil, internal.NewInternalError("failed to update password", err)
	}

	s.logger.InfoContext(ctx, "password updated", "user_id", id)
	return s.users.Single(ctx, id)
}

// Upgrade moves a user into a new supplier organization and grants the
// requested role. Nothing is written unless every check passes.
func (s *Service) Upgrade(ctx context.Context, req UpgradeRequest) (*UpgradeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.orgs.GetByName(ctx, req.OrganizationName)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up organization", err)
	}
	if existing != nil {
		return nil, internal.ErrOrgNameTaken
	}

	if _, err := s.users.Fetch(ctx, req.UserID); err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Is(internal.ErrNotFound) {
			return nil, errUpgradeUserMissing
		}
		return nil, err
	}

	r, err := s.roles.GetByName(ctx, req.RoleName)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up role", err)
	}
	if r == nil {
		return nil, errUpgradeRoleMissing
	}

	orgID := ids.New()
	org := &identity.Organization{
		ID:       orgID,
		Name:     req.OrganizationName,
		Type:     identity.OrganizationTypeSupplier,
		IsSystem: false,
		Ownerships: identity.Ownerships{
			{OwnerID: req.UserID, OwnershipType: identity.OwnershipTypeUser},
		},
		Href: resource.APIPrefix + organization.Path + "/" + orgID,
	}

	if err := s.repo.Upgrade(ctx, req.UserID, org, r.ID); err != nil {
		if errors.Is(err, resource.ErrDuplicate) {
			return nil, internal.ErrOrgNameTaken.WithCause(err)
		}
		s.logger.ErrorContext(ctx, "Upgrade: store failed", "user_id", req.UserID, "error", err)
		return nil, internal.NewInternalError("There was an error with the upgrade user request", err)
	}

	s.logger.InfoContext(ctx, "user upgraded",
		"user_id", req.UserID,
		"organization_id", org.ID,
		"role", r.Name)
	_ = s.events.Publish(ctx, events.NewUserUpgradedEvent(req.UserID, org.ID, r.Name))

	return &UpgradeResponse{OrganizationID: org.ID}, nil
}
