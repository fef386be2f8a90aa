package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
)

// CredentialStore is the slice of the user store the engine needs. Lookups
// return (nil, nil) when no row matches.
type CredentialStore interface {
	GetUserByEmail(ctx context.Context, email string) (*identity.User, error)
	GetUserByID(ctx context.Context, userID string) (*identity.User, error)
	ClearTokenExpired(ctx context.Context, userID string) error
}

// Service is the main auth service with dependencies
type Service struct {
	repo   CredentialStore
	codec  *TokenCodec
	expiry ExpiryPolicy
	logger *slog.Logger
}

// NewService creates a new auth service
func NewService(repo CredentialStore, codec *TokenCodec, expiry ExpiryPolicy, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		codec:  codec,
		expiry: expiry,
		logger: logger,
	}
}

// Authenticate validates credentials and returns a signed token. Unknown
// email, store failure and wrong password all produce the same 401.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	email := NormalizeEmail(dto.Email)
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		s.logger.ErrorContext(ctx, "Authenticate: user lookup failed", "error", err)
		return nil, internal.ErrInvalidCredentials
	}
	if user == nil {
		s.logger.InfoContext(ctx, "Authenticate: unknown email")
		return nil, internal.ErrInvalidCredentials
	}

	if err := VerifyPassword(user.Password, dto.Password); err != nil {
		s.logger.InfoContext(ctx, "Authenticate: password mismatch", "user_id", user.ID)
		return nil, internal.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, internal.ErrUserInactive
	}

	// a fresh login satisfies "must login again"
	if user.IsTokenExpired {
		if err := s.repo.ClearTokenExpired(ctx, user.ID); err != nil {
			return nil, internal.NewInternalError("failed to reset session state", err)
		}
	}

	return s.issue(user, "Successfully Authenticated")
}

// RefreshToken verifies the presented token, re-reads the user and issues a
// new token with the user's current roles unless the session was revoked.
func (s *Service) RefreshToken(ctx context.Context, token string) (*AuthResponse, error) {
	if token == "" {
		return nil, internal.ErrNoToken
	}

	payload, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, payload.UserID)
	if err != nil {
		s.logger.ErrorContext(ctx, "RefreshToken: user lookup failed", "user_id", payload.UserID, "error", err)
		return nil, internal.ErrInvalidToken
	}
	if user == nil {
		return nil, internal.ErrInvalidToken
	}

	if user.IsTokenExpired {
		s.logger.InfoContext(ctx, "RefreshToken: session revoked", "user_id", user.ID)
		return nil, internal.ErrSessionRevoked
	}

	return s.issue(user, "Successfully Refreshed Token")
}

// VerifyToken validates a token and returns its payload
func (s *Service) VerifyToken(token string) (*TokenPayload, error) {
	return s.codec.Verify(token)
}

func (s *Service) issue(user *identity.User, message string) (*AuthResponse, error) {
	payload := TokenPayload{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Roles:          user.RoleNames(),
	}

	token, stamped, err := s.codec.Issue(payload, s.expiry.Soft, s.expiry.Hard)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	return &AuthResponse{
		Authenticated: true,
		Message:       message,
		ExpiresAt:     stamped.ExpiresAt,
		Token:         token,
		Decoded:       stamped,
	}, nil
}

// NormalizeEmail is applied everywhere an email is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
