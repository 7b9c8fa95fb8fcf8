package reservation

import (
	"context"

	"reservehub/internal/domain"
)

// AdminMessenger delivers a staff message to a user.
type AdminMessenger interface {
	SendAdminMessage(ctx context.Context, userID int64, subject, content string, reservationIDs []int64) (*domain.Message, error)
}
