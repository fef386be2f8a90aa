// Package registration holds the open workflows: self registration, email
// validation and password recovery.
package registration

import (
	"context"

	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
)

// RepositoryAPI is the persistence side of the workflows. Lookups return
// (nil, nil) when nothing matches.
type RepositoryAPI interface {
	GuestOrganization(ctx context.Context) (*identity.Organization, error)
	GuestRole(ctx context.Context) (*identity.Role, error)
	FindUserByEmail(ctx context.Context, email string) (*identity.User, error)

	// CreateUser inserts the user and its verification record, then calls
	// confirm inside the same transaction. An error from confirm rolls the
	// registration back. A duplicate email is reported as resource.ErrDuplicate.
	CreateUser(ctx context.Context, user *identity.User, verification *identity.EmailVerification, confirm func(ctx context.Context) error) error

	GetVerification(ctx context.Context, id string) (*identity.EmailVerification, error)
	MarkEmailVerified(ctx context.Context, verification *identity.EmailVerification) error

	CreateResetToken(ctx context.Context, token *identity.PasswordResetToken) error
	GetResetToken(ctx context.Context, id string) (*identity.PasswordResetToken, error)
	// ResetPassword stores hash on the token's user and marks the token used.
	// resource.ErrNotFound means the token was consumed concurrently.
	ResetPassword(ctx context.Context, token *identity.PasswordResetToken, hash string) error
}

// Notifier is the slice of notification.Dispatcher the workflows await.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, address, id string) error
	SendPasswordResetEmail(ctx context.Context, address, id string) error
}

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*identity.User, error)
	ValidateEmail(ctx context.Context, dto ValidateEmailDTO) (*MessageResponse, error)
	RequestPasswordReset(ctx context.Context, dto PasswordResetRequestDTO) (*MessageResponse, error)
	ResetPassword(ctx context.Context, dto PasswordResetDTO) (*MessageResponse, error)
}
