package domain

import "time"

type TokenPurpose string

const (
	TokenActivation    TokenPurpose = "activation"
	TokenPasswordReset TokenPurpose = "password_reset"
	TokenEmailChange   TokenPurpose = "email_change"
)

// UserToken is a single-use emailed token. Only the peppered hash is stored.
type UserToken struct {
	ID        int64        `json:"id" gorm:"primaryKey"`
	UserID    int64        `json:"user_id" gorm:"not null;index"`
	Purpose   TokenPurpose `json:"purpose" gorm:"size:32;not null;index"`
	TokenHash string       `json:"-" gorm:"size:64;not null;uniqueIndex"`
	NewEmail  string       `json:"new_email,omitempty" gorm:"size:255"`
	ExpiresAt time.Time    `json:"expires_at" gorm:"not null;index"`
	UsedAt    *time.Time   `json:"used_at,omitempty"`
	CreatedAt time.Time    `json:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (t *UserToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

func (t *UserToken) IsUsed() bool {
	return t.UsedAt != nil
}
