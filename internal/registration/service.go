package registration

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/internal/core/common/validation"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/core/events"
	"github.com/frahmantamala/identity-api/internal/core/ids"
	"github.com/frahmantamala/identity-api/internal/resource"
	"github.com/frahmantamala/identity-api/internal/user"
)

const (
	msgEmailVerified      = "Email address successfully verified"
	msgResetRequested     = "If that email is registered, a password reset link has been sent"
	msgPasswordWasUpdated = "Password successfully reset"
)

// Settings are the security values the workflows need.
type Settings struct {
	BCryptCost                int
	EmailVerificationValidity time.Duration
	PasswordResetValidity     time.Duration
}

type Service struct {
	repo     RepositoryAPI
	notifier Notifier
	events   events.Publisher
	settings Settings
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, notifier Notifier, publisher events.Publisher, settings Settings, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		events:   publisher,
		settings: settings,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source used for expiry decisions.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Register creates an unverified guest user, stores a verification record
// and mails its id. The user is only kept if the email went out.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*identity.User, error) {
	u := &identity.User{
		Email:     dto.Email,
		Password:  dto.Password,
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		Phone:     dto.Phone,
	}
	if err := user.Prepare(u, s.settings.BCryptCost); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindUserByEmail(ctx, u.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up email", err)
	}
	if existing != nil {
		return nil, internal.ErrEmailTaken
	}

	guestOrg, err := s.repo.GuestOrganization(ctx)
	if err != nil || guestOrg == nil {
		return nil, internal.NewInternalError("guest organization is not available", err)
	}
	guestRole, err := s.repo.GuestRole(ctx)
	if err != nil || guestRole == nil {
		return nil, internal.NewInternalError("guest role is not available", err)
	}

	u.ID = ids.New()
	u.Href = resource.APIPrefix + user.Path + "/" + u.ID
	u.OrganizationID = guestOrg.ID
	u.Roles = []identity.Role{*guestRole}
	u.IsActive = true
	u.IsEmailVerified = false
	u.IsTokenExpired = false
	u.Ownerships = identity.Ownerships{{OwnerID: u.ID, OwnershipType: identity.OwnershipTypeUser}}

	now := s.now()
	verification := &identity.EmailVerification{
		ID:        ids.NewSortable(),
		UserID:    u.ID,
		ExpiresAt: now.Add(s.settings.EmailVerificationValidity),
	}
	verification.Href = resource.APIPrefix + EmailVerificationsPath + "/" + verification.ID

	err = s.repo.CreateUser(ctx, u, verification, func(ctx context.Context) error {
		return s.notifier.SendVerificationEmail(ctx, u.Email, verification.ID)
	})
	if err != nil {
		if errors.Is(err, resource.ErrDuplicate) {
			return nil, internal.ErrEmailTaken.WithCause(err)
		}
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Register: store failed", "error", err)
		return nil, internal.NewInternalError("failed to register user", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	_ = s.events.Publish(ctx, events.NewUserRegisteredEvent(u.ID, u.Email, u.OrganizationID))

	return user.Sanitize(u), nil
}

// ValidateEmail marks the verification and its user as verified. Repeating
// it on an already verified record succeeds.
func (s *Service) ValidateEmail(ctx context.Context, dto ValidateEmailDTO) (*MessageResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	verification, err := s.repo.GetVerification(ctx, dto.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load email verification", err)
	}
	if verification == nil {
		return nil, internal.ErrNotFound
	}
	if verification.IsVerified {
		return &MessageResponse{Message: msgEmailVerified}, nil
	}
	if verification.Expired(s.now()) {
		return nil, internal.ErrEmailVerificationExpired
	}

	if err := s.repo.MarkEmailVerified(ctx, verification); err != nil {
		s.logger.ErrorContext(ctx, "ValidateEmail: store failed", "verification_id", verification.ID, "error", err)
		return nil, internal.NewInternalError("failed to verify email", err)
	}

	s.logger.InfoContext(ctx, "email verified", "user_id", verification.UserID)
	_ = s.events.Publish(ctx, events.NewUserEmailVerifiedEvent(verification.UserID, verification.ID))

	return &MessageResponse{Message: msgEmailVerified}, nil
}

// RequestPasswordReset answers the same way whether or not the address is
// registered.
func (s *Service) RequestPasswordReset(ctx context.Context, dto PasswordResetRequestDTO) (*MessageResponse, error) {
	email := auth.NormalizeEmail(dto.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	u, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up email", err)
	}
	if u == nil {
		s.logger.InfoContext(ctx, "RequestPasswordReset: unknown email")
		return &MessageResponse{Message: msgResetRequested}, nil
	}

	token := &identity.PasswordResetToken{
		ID:        ids.NewSortable(),
		UserID:    u.ID,
		ExpiresAt: s.now().Add(s.settings.PasswordResetValidity),
	}
	token.Href = resource.APIPrefix + PasswordResetTokensPath + "/" + token.ID

	if err := s.repo.CreateResetToken(ctx, token); err != nil {
		s.logger.ErrorContext(ctx, "RequestPasswordReset: store failed", "user_id", u.ID, "error", err)
		return nil, internal.NewInternalError("failed to create password reset token", err)
	}

	if err := s.notifier.SendPasswordResetEmail(ctx, u.Email, token.ID); err != nil {
		return nil, err
	}

	return &MessageResponse{Message: msgResetRequested}, nil
}

// ResetPassword completes the reset started by RequestPasswordReset. A token
// can be used once.
func (s *Service) ResetPassword(ctx context.Context, dto PasswordResetDTO) (*MessageResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	token, err := s.repo.GetResetToken(ctx, dto.PasswordResetTokenID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load password reset token", err)
	}
	if token == nil {
		return nil, internal.ErrNotFound
	}
	if !token.Usable(s.now()) {
		return nil, internal.ErrPasswordResetTokenExpired
	}

	hash, err := auth.HashPassword(dto.Password, s.settings.BCryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	if err := s.repo.ResetPassword(ctx, token, hash); err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			return nil, internal.ErrPasswordResetTokenExpired
		}
		s.logger.ErrorContext(ctx, "ResetPassword: store failed", "token_id", token.ID, "error", err)
		return nil, internal.NewInternalError("failed to reset password", err)
	}

	s.logger.InfoContext(ctx, "password reset", "user_id", token.UserID)
	_ = s.events.Publish(ctx, events.NewUserPasswordResetEvent(token.UserID, token.ID))

	return &MessageResponse{Message: msgPasswordWasUpdated}, nil
}
