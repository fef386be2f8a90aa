package identity

import "time"

type OrganizationType int

const (
	OrganizationTypeSystem   OrganizationType = 1
	OrganizationTypeGuest    OrganizationType = 2
	OrganizationTypeSupplier OrganizationType = 3
)

const (
	SystemOrganizationName = "system"
	GuestOrganizationName  = "guest"
)

type Organization struct {
	ID         string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name       string           `gorm:"column:name;uniqueIndex;not null" json:"name"`
	Type       OrganizationType `gorm:"column:type;not null" json:"type"`
	IsSystem   bool             `gorm:"column:is_system;not null" json:"isSystem"`
	Users      []User           `gorm:"foreignKey:OrganizationID" json:"users,omitempty"`
	Ownerships Ownerships       `gorm:"column:ownerships;type:text;serializer:json" json:"ownerships"`
	Href       string           `gorm:"column:href" json:"href"`
	CreatedAt  time.Time        `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt  time.Time        `gorm:"column:updated_at" json:"updatedAt"`
}

func (o *Organization) GetID() string                { return o.ID }
func (o *Organization) SetID(id string)              { o.ID = id }
func (o *Organization) SetHref(href string)          { o.Href = href }
func (o *Organization) GetOwnerships() Ownerships    { return o.Ownerships }
func (o *Organization) SetOwnerships(own Ownerships) { o.Ownerships = own }
