package repository

import (
	"context"
	"time"

	"reservehub/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create stores the message and its reservation links in one transaction.
func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(m).Error; err != nil {
			return err
		}
		return linkReservations(tx, m.ID, m.ReservationIDs)
	})
}

func (r *MessageRepository) LinkReservations(ctx context.Context, messageID int64, reservationIDs []int64) error {
	return linkReservations(r.db.WithContext(ctx), messageID, reservationIDs)
}

func linkReservations(db *gorm.DB, messageID int64, reservationIDs []int64) error {
	if len(reservationIDs) == 0 {
		return nil
	}
	links := make([]domain.MessageReservation, 0, len(reservationIDs))
	for _, id := range reservationIDs {
		links = append(links, domain.MessageReservation{MessageID: messageID, ReservationID: id})
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Omit("Message", "Reservation").Create(&links).Error
}

func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	var m domain.Message
	if err := r.db.WithContext(ctx).Preload("User").First(&m, id).Error; err != nil {
		return nil, err
	}
	msgs := []domain.Message{m}
	if err := r.attachReservationIDs(ctx, msgs); err != nil {
		return nil, err
	}
	return &msgs[0], nil
}

func (r *MessageRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Message, error) {
	var out []domain.Message
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, r.attachReservationIDs(ctx, out)
}

// ListFromUsers is the staff inbox: messages written by users.
func (r *MessageRepository) ListFromUsers(ctx context.Context, limit, offset int) ([]domain.Message, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Message{}).Where("sender = ?", domain.SenderUser)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []domain.Message
	err := q.Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, r.attachReservationIDs(ctx, out)
}

// MarkAdminMessagesRead flags every unread staff message to userID as read.
func (r *MessageRepository) MarkAdminMessagesRead(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("user_id = ? AND sender = ? AND is_read = ?", userID, domain.SenderAdmin, false).
		Update("is_read", true).Error
}

func (r *MessageRepository) SetRead(ctx context.Context, ids []int64, read bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("id IN ?", ids).
		Update("is_read", read)
	return tx.RowsAffected, tx.Error
}

func (r *MessageRepository) Reply(ctx context.Context, id int64, response string, at time.Time) error {
	tx := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("id = ?", id).
		Updates(map[string]any{"response": response, "response_date": at})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountUnreadFromAdmin counts staff messages the user has not opened yet.
func (r *MessageRepository) CountUnreadFromAdmin(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("user_id = ? AND sender = ? AND is_read = ?", userID, domain.SenderAdmin, false).
		Count(&n).Error
	return n, err
}

// CountUnreadReplies counts unread staff messages that carry a response.
func (r *MessageRepository) CountUnreadReplies(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("user_id = ? AND sender = ? AND is_read = ? AND response IS NOT NULL", userID, domain.SenderAdmin, false).
		Count(&n).Error
	return n, err
}

func (r *MessageRepository) attachReservationIDs(ctx context.Context, msgs []domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(msgs))
	index := make(map[int64]int, len(msgs))
	for i := range msgs {
		ids = append(ids, msgs[i].ID)
		index[msgs[i].ID] = i
		msgs[i].ReservationIDs = []int64{}
	}

	var links []domain.MessageReservation
	err := r.db.WithContext(ctx).
		Where("message_id IN ?", ids).
		Order("message_id ASC, reservation_id ASC").
		Find(&links).Error
	if err != nil {
		return err
	}
	for _, l := range links {
		i := index[l.MessageID]
		msgs[i].ReservationIDs = append(msgs[i].ReservationIDs, l.ReservationID)
	}
	return nil
}
