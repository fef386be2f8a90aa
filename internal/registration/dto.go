package registration

import (
	"github.com/frahmantamala/identity-api/internal/core/common/validation"
)

type RegisterDTO struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type ValidateEmailDTO struct {
	ID string `json:"id"`
}

func (d ValidateEmailDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("id", d.ID).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type PasswordResetRequestDTO struct {
	Email string `json:"email"`
}

type PasswordResetDTO struct {
	PasswordResetTokenID string `json:"passwordResetTokenId"`
	Password             string `json:"password"`
}

func (d PasswordResetDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("passwordResetTokenId", d.PasswordResetTokenID).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	if err := validation.ValidatePassword(d.Password); err != nil {
		return err
	}
	return nil
}

type MessageResponse struct {
	Message string `json:"message"`
}
