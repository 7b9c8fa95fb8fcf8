package admin

import (
	"time"

	"reservehub/internal/domain"
)

type AdjustBalanceRequest struct {
	Amount int64  `json:"amount" binding:"required"`
	Reason string `json:"reason" binding:"required" validate:"required,max=100"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type UserRow struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Balance    int64     `json:"balance"`
	IsActive   bool      `json:"is_active"`
	IsStaff    bool      `json:"is_staff"`
	DateJoined time.Time `json:"date_joined"`
}

func toUserRow(u *domain.User) UserRow {
	return UserRow{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName(),
		Balance:    u.Balance,
		IsActive:   u.IsActive,
		IsStaff:    u.IsStaff,
		DateJoined: u.DateJoined,
	}
}
