package user

import (
	"strings"

	"github.com/frahmantamala/identity-api/internal"
	"github.com/frahmantamala/identity-api/internal/core/common/validation"
)

type UpgradeRequest struct {
	UserID           string `json:"userId"`
	OrganizationName string `json:"organizationName"`
	RoleName         string `json:"roleName"`
}

func (r *UpgradeRequest) Validate() error {
	r.OrganizationName = strings.TrimSpace(r.OrganizationName)

	v := validation.NewValidator()
	v.Field("roleName", r.RoleName).OneOf(internal.ErrCodeInvalidUpgradeRole, UpgradeRoles...)
	if err := v.Validate(); err != nil {
		return internal.ErrInvalidUpgradeRole
	}

	v = validation.NewValidator()
	v.Field("userId", r.UserID).Required()
	v.Field("organizationName", r.OrganizationName).Required().MaxLength(200)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpgradeResponse struct {
	OrganizationID string `json:"organizationId"`
}

type UpdatePasswordDTO struct {
	Password string `json:"password"`
}

// UpdateProfileDTO is the self-service patch. Nil fields are left alone.
type UpdateProfileDTO struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}
