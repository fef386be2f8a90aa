package organization

import (
	"strings"

	"github.com/frahmantamala/identity-api/internal/core/common/validation"
)

type RenameDTO struct {
	Name string `json:"name"`
}

func (d *RenameDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(200)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
