package resource

import (
	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
)

// OwnershipPolicy decides self-service modification rights for one resource
// type. Roles outside RolesRequiringOwnership are never restricted.
type OwnershipPolicy struct {
	Required                bool
	RolesRequiringOwnership []string
	OwnershipType           identity.OwnershipType
}

// IsOwner reports whether rec lists the token's user as owner with the
// policy's ownership type.
func (p OwnershipPolicy) IsOwner(token *auth.TokenPayload, rec any) bool {
	if token == nil || token.UserID == "" {
		return false
	}
	owned, ok := rec.(identity.Owned)
	if !ok {
		return false
	}
	return owned.GetOwnerships().Has(token.UserID, p.OwnershipType)
}

// AddOwnerships stamps rec with the creating identity. Repeated calls do not
// duplicate the entry.
func (p OwnershipPolicy) AddOwnerships(token *auth.TokenPayload, rec any) {
	if !p.Required || token == nil || token.UserID == "" {
		return
	}
	owned, ok := rec.(identity.Owned)
	if !ok {
		return
	}
	current := owned.GetOwnerships()
	if current.Has(token.UserID, p.OwnershipType) {
		return
	}
	owned.SetOwnerships(append(current, identity.Ownership{
		OwnerID:       token.UserID,
		OwnershipType: p.OwnershipType,
	}))
}

// ModificationAllowed is the update/delete gate. A token holding any role
// from RolesRequiringOwnership must own the record.
func (p OwnershipPolicy) ModificationAllowed(token *auth.TokenPayload, rec any) bool {
	if !p.Required {
		return true
	}
	if token == nil {
		return false
	}
	if !token.HasAnyRole(p.RolesRequiringOwnership...) {
		return true
	}
	return p.IsOwner(token, rec)
}
