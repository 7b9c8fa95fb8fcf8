package domain

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID                  int64      `json:"id" gorm:"primaryKey"`
	Email               string     `json:"email" gorm:"size:255;not null;uniqueIndex" validate:"required,email"`
	PasswordHash        string     `json:"-" gorm:"not null"`
	FirstName           string     `json:"first_name" gorm:"size:100"`
	LastName            string     `json:"last_name" gorm:"size:100"`
	Balance             int64      `json:"balance" gorm:"not null;default:0"`
	IsActive            bool       `json:"is_active" gorm:"not null;default:false"`
	IsStaff             bool       `json:"is_staff" gorm:"not null;default:false"`
	FailedLoginAttempts int        `json:"-" gorm:"not null;default:0"`
	LockedUntil         *time.Time `json:"-"`
	DateJoined          time.Time  `json:"date_joined" gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Role is what goes into the access token.
func (u *User) Role() UserRole {
	if u.IsStaff {
		return RoleAdmin
	}
	return RoleUser
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
