package permission

import (
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/resource"
)

const Path = "/permissions"

// Names are the permissions seeded at bootstrap and granted to every role.
var Names = []string{
	"query",
	"delete",
	"blank",
	"utility",
	"count",
	"clear",
	"single",
	"create",
	"update",
}

func NewDefinition(store resource.Store[*identity.Permission]) resource.Definition[*identity.Permission] {
	return resource.Definition[*identity.Permission]{
		Name:  "permissions",
		Path:  Path,
		New:   func() *identity.Permission { return &identity.Permission{} },
		Store: store,
	}
}
