package message

import (
	"context"
	"time"

	"reservehub/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Message, error)
	ListFromUsers(ctx context.Context, limit, offset int) ([]domain.Message, int64, error)
	MarkAdminMessagesRead(ctx context.Context, userID int64) error
	SetRead(ctx context.Context, ids []int64, read bool) (int64, error)
	Reply(ctx context.Context, id int64, response string, at time.Time) error
	CountUnreadFromAdmin(ctx context.Context, userID int64) (int64, error)
}

type ReservationRepository interface {
	FirstForUser(ctx context.Context, userID int64) (*domain.Reservation, error)
	OwnedIDs(ctx context.Context, userID int64, ids []int64) ([]int64, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Notifier pushes events to connected websocket clients.
type Notifier interface {
	SendToUser(userID int64, event any) bool
	SendToStaff(event any) int
}
