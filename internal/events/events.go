package events

import (
	"context"
	"errors"
	"time"

	"reservehub/internal/pkg/logger"
)

// Subjects published after the corresponding change is committed.
const (
	UserRegistered           = "user.registered"
	ReservationCreated       = "reservation.created"
	ReservationStatusChanged = "reservation.status_changed"
	ReviewCreated            = "review.created"
	ReviewDeleted            = "review.deleted"
	MessageCreated           = "message.created"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
	Close() error
}

type UserRegisteredEvent struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type ReservationCreatedEvent struct {
	ReservationID int64     `json:"reservation_id"`
	UserID        int64     `json:"user_id"`
	ServiceName   string    `json:"service_name"`
	ServiceType   string    `json:"service_type"`
	Price         int64     `json:"price"`
	Start         time.Time `json:"start"`
}

type ReservationStatusChangedEvent struct {
	ReservationID int64     `json:"reservation_id"`
	UserID        int64     `json:"user_id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	ChangedAt     time.Time `json:"changed_at"`
}

type ReviewEvent struct {
	ReviewID  int64 `json:"review_id"`
	UserID    int64 `json:"user_id"`
	ServiceID int64 `json:"service_id"`
	Points    int64 `json:"points"`
}

type MessageCreatedEvent struct {
	MessageID int64  `json:"message_id"`
	UserID    int64  `json:"user_id"`
	Sender    string `json:"sender"`
	Subject   string `json:"subject"`
}

// Emit publishes and logs failures. Events are best effort: the change they
// describe is already committed.
func Emit(ctx context.Context, p Publisher, subject string, data any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, data); err != nil {
		logger.WarnContext(ctx, "event publish failed", "subject", subject, "error", err)
	}
}

type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() error { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, subject string, data any) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, subject, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New connects to every configured broker. With none configured it returns Noop.
func New(natsURL, amqpURL string) (Publisher, error) {
	var pubs Multi
	if natsURL != "" {
		p, err := NewNATSPublisher(natsURL)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, p)
	}
	if amqpURL != "" {
		p, err := NewAMQPPublisher(amqpURL)
		if err != nil {
			_ = pubs.Close()
			return nil, err
		}
		pubs = append(pubs, p)
	}
	switch len(pubs) {
	case 0:
		return Noop{}, nil
	case 1:
		return pubs[0], nil
	}
	return pubs, nil
}
