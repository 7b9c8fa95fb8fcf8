package message

import (
	"context"
	"errors"
	"strings"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/events"
	"reservehub/internal/pkg/logger"

	"gorm.io/gorm"
)

type Service struct {
	messages     MessageRepository
	reservations ReservationRepository
	users        UserRepository
	notifier     Notifier
	publisher    events.Publisher
	now          func() time.Time
}

func NewService(messages MessageRepository, reservations ReservationRepository, users UserRepository, notifier Notifier, publisher events.Publisher) *Service {
	return &Service{
		messages:     messages,
		reservations: reservations,
		users:        users,
		notifier:     notifier,
		publisher:    publisher,
		now:          time.Now,
	}
}

/* ---------- USER ---------- */

// ListForUser returns the user's inbox and then marks staff messages read, so
// the returned is_read flags still show what was new.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]domain.Message, error) {
	msgs, err := s.messages.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.messages.MarkAdminMessagesRead(ctx, userID); err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.messages.CountUnreadFromAdmin(ctx, userID)
}

func (s *Service) SendFromUser(ctx context.Context, userID int64, req SendRequest) (*domain.Message, error) {
	ids, err := s.ownedReservations(ctx, userID, req.ReservationIDs)
	if err != nil {
		return nil, err
	}
	m := &domain.Message{
		UserID:         userID,
		Subject:        strings.TrimSpace(req.Subject),
		Content:        strings.TrimSpace(req.Content),
		Sender:         domain.SenderUser,
		ReservationIDs: ids,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}

	s.notifyStaff(m)
	s.emit(ctx, m)
	return m, nil
}

/* ---------- ADMIN ---------- */

func (s *Service) ListFromUsers(ctx context.Context, limit, offset int) ([]domain.Message, int64, error) {
	return s.messages.ListFromUsers(ctx, limit, offset)
}

// SendAdminMessage writes a staff message. Without explicit reservations it is
// linked to the user's first reservation, when there is one.
func (s *Service) SendAdminMessage(ctx context.Context, userID int64, subject, content string, reservationIDs []int64) (*domain.Message, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	ids, err := s.ownedReservations(ctx, userID, reservationIDs)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		first, err := s.reservations.FirstForUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if first != nil {
			ids = []int64{first.ID}
		}
	}

	m := &domain.Message{
		UserID:         userID,
		Subject:        strings.TrimSpace(subject),
		Content:        strings.TrimSpace(content),
		Sender:         domain.SenderAdmin,
		ReservationIDs: ids,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}

	s.notifier.SendToUser(userID, Event{Type: EventNewMessage, Payload: m})
	s.emit(ctx, m)
	return m, nil
}

func (s *Service) Reply(ctx context.Context, id int64, response string) (*domain.Message, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, ErrEmptyResponse
	}
	if err := s.messages.Reply(ctx, id, response, s.now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	m, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifier.SendToUser(m.UserID, Event{Type: EventReply, Payload: m})
	return m, nil
}

func (s *Service) SetRead(ctx context.Context, ids []int64, read bool) (int64, error) {
	return s.messages.SetRead(ctx, ids, read)
}

func (s *Service) ownedReservations(ctx context.Context, userID int64, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	owned, err := s.reservations.OwnedIDs(ctx, userID, unique)
	if err != nil {
		return nil, err
	}
	if len(owned) != len(unique) {
		return nil, ErrForeignReservation
	}
	return owned, nil
}

func (s *Service) notifyStaff(m *domain.Message) {
	if n := s.notifier.SendToStaff(Event{Type: EventNewMessage, Payload: m}); n == 0 {
		logger.Default().Debug("no staff online for new message", "message_id", m.ID)
	}
}

func (s *Service) emit(ctx context.Context, m *domain.Message) {
	events.Emit(ctx, s.publisher, events.MessageCreated, events.MessageCreatedEvent{
		MessageID: m.ID,
		UserID:    m.UserID,
		Sender:    string(m.Sender),
		Subject:   m.Subject,
	})
}
