// Package identity holds the persisted records of the identity service.
// The structs carry both gorm and json tags: they are the rows in Postgres
// and the documents returned by the API.
package identity

// Document is implemented by every record the resource pipeline manages.
type Document interface {
	GetID() string
	SetID(id string)
	SetHref(href string)
}

// Owned is implemented by records that carry an ownership list.
type Owned interface {
	GetOwnerships() Ownerships
	SetOwnerships(Ownerships)
}

type OwnershipType int

const (
	OwnershipTypeSupplier     OwnershipType = 1
	OwnershipTypeOrganization OwnershipType = 2
	OwnershipTypeUser         OwnershipType = 3
)

type Ownership struct {
	OwnerID       string        `json:"ownerId"`
	OwnershipType OwnershipType `json:"ownershipType"`
}

// Ownerships is stored as a JSON column.
type Ownerships []Ownership

func (o Ownerships) Has(ownerID string, t OwnershipType) bool {
	for _, own := range o {
		if own.OwnerID == ownerID && own.OwnershipType == t {
			return true
		}
	}
	return false
}
