package identity

import "time"

type User struct {
	ID              string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email           string     `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password        string     `gorm:"column:password;not null" json:"password,omitempty"`
	FirstName       string     `gorm:"column:first_name" json:"firstName"`
	LastName        string     `gorm:"column:last_name" json:"lastName"`
	Phone           string     `gorm:"column:phone" json:"phone,omitempty"`
	OrganizationID  string     `gorm:"column:organization_id;type:varchar(36);index" json:"organizationId"`
	Roles           []Role     `gorm:"many2many:user_roles;" json:"roles"`
	Ownerships      Ownerships `gorm:"column:ownerships;type:text;serializer:json" json:"ownerships"`
	IsTokenExpired  bool       `gorm:"column:is_token_expired;not null" json:"isTokenExpired"`
	IsEmailVerified bool       `gorm:"column:is_email_verified;not null" json:"isEmailVerified"`
	IsActive        bool       `gorm:"column:is_active;not null" json:"isActive"`
	Href            string     `gorm:"column:href" json:"href"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

func (u *User) GetID() string              { return u.ID }
func (u *User) SetID(id string)            { u.ID = id }
func (u *User) SetHref(href string)        { u.Href = href }
func (u *User) GetOwnerships() Ownerships  { return u.Ownerships }
func (u *User) SetOwnerships(o Ownerships) { u.Ownerships = o }

// RoleNames returns the names embedded in issued tokens.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
