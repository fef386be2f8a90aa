package identity

import "time"

const (
	RoleAdmin          = "admin"
	RoleGuest          = "guest"
	RoleImpersonator   = "impersonator"
	RoleSupplierOwner  = "supplier:owner"
	RoleSupplierEditor = "supplier:editor"
	RoleProductAdmin   = "product:admin"
	RoleProductEditor  = "product:editor"
)

type Role struct {
	ID          string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string       `gorm:"column:name;uniqueIndex;not null" json:"name"`
	Description string       `gorm:"column:description" json:"description"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions"`
	Href        string       `gorm:"column:href" json:"href"`
	CreatedAt   time.Time    `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"column:updated_at" json:"updatedAt"`
}

func (r *Role) GetID() string       { return r.ID }
func (r *Role) SetID(id string)     { r.ID = id }
func (r *Role) SetHref(href string) { r.Href = href }

type Permission struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Value       string    `gorm:"column:value" json:"value"`
	Description string    `gorm:"column:description" json:"description"`
	Href        string    `gorm:"column:href" json:"href"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (p *Permission) GetID() string       { return p.ID }
func (p *Permission) SetID(id string)     { p.ID = id }
func (p *Permission) SetHref(href string) { p.Href = href }
