package registration

import (
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/resource"
)

const (
	EmailVerificationsPath  = "/email-verifications"
	PasswordResetTokensPath = "/password-reset-tokens"
)

// NewEmailVerificationDefinition exposes verification records to admins.
func NewEmailVerificationDefinition(store resource.Store[*identity.EmailVerification]) resource.Definition[*identity.EmailVerification] {
	return resource.Definition[*identity.EmailVerification]{
		Name:  "email-verifications",
		Path:  EmailVerificationsPath,
		New:   func() *identity.EmailVerification { return &identity.EmailVerification{} },
		Store: store,
	}
}

func NewPasswordResetTokenDefinition(store resource.Store[*identity.PasswordResetToken]) resource.Definition[*identity.PasswordResetToken] {
	return resource.Definition[*identity.PasswordResetToken]{
		Name:  "password-reset-tokens",
		Path:  PasswordResetTokensPath,
		New:   func() *identity.PasswordResetToken { return &identity.PasswordResetToken{} },
		Store: store,
	}
}
