package identity

import "time"

type EmailVerification struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string    `gorm:"column:user_id;type:varchar(36);not null;index" json:"userId"`
	ExpiresAt  time.Time `gorm:"column:expires_at;not null" json:"expiresAt"`
	IsVerified bool      `gorm:"column:is_verified;not null" json:"isVerified"`
	Href       string    `gorm:"column:href" json:"href"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (e *EmailVerification) GetID() string       { return e.ID }
func (e *EmailVerification) SetID(id string)     { e.ID = id }
func (e *EmailVerification) SetHref(href string) { e.Href = href }

func (e *EmailVerification) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

type PasswordResetToken struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;index" json:"userId"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expiresAt"`
	IsUsed    bool      `gorm:"column:is_used;not null" json:"isUsed"`
	Href      string    `gorm:"column:href" json:"href"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (t *PasswordResetToken) GetID() string       { return t.ID }
func (t *PasswordResetToken) SetID(id string)     { t.ID = id }
func (t *PasswordResetToken) SetHref(href string) { t.Href = href }

// Usable reports whether the token can still complete a reset.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return !t.IsUsed && !now.After(t.ExpiresAt)
}

// All lists the models for gorm AutoMigrate in tests and local tooling.
func All() []interface{} {
	return []interface{}{
		&Permission{},
		&Role{},
		&Organization{},
		&User{},
		&EmailVerification{},
		&PasswordResetToken{},
	}
}
