package organization

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/resource"
)

// Service holds the self-service organization operations.
type Service struct {
	orgs   *resource.Service[*identity.Organization]
	logger *slog.Logger
}

func NewService(orgs *resource.Service[*identity.Organization], logger *slog.Logger) *Service {
	return &Service{orgs: orgs, logger: logger}
}

func (s *Service) Get(ctx context.Context, id string) (*identity.Organization, error) {
	return s.orgs.Single(ctx, id)
}

// Rename changes only the name of an organization the caller may modify.
func (s *Service) Rename(ctx context.Context, token *auth.TokenPayload, id string, dto RenameDTO) (*identity.Organization, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	org, err := s.orgs.Update(ctx, token, id, func(org *identity.Organization) error {
		org.Name = dto.Name
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "organization renamed", "organization_id", id)
	return org, nil
}
