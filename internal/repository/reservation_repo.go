package repository

import (
	"context"

	"reservehub/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	return r.db.WithContext(ctx).Omit("User", "Option").Create(res).Error
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := r.db.WithContext(ctx).Preload("Option").First(&res, id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

// GetByIDForUpdate locks the row until the surrounding transaction ends.
func (r *ReservationRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&res, id).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := r.db.WithContext(ctx).
		Preload("Option").
		Where("user_id = ?", userID).
		Order("start_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// List returns reservations for the staff view, optionally by status.
func (r *ReservationRepository) List(ctx context.Context, status domain.ReservationStatus, limit, offset int) ([]domain.Reservation, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Reservation{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []domain.Reservation
	err := q.Preload("User").Preload("Option").
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, total, err
}

// Save persists status, dates and price of an existing reservation.
func (r *ReservationRepository) Save(ctx context.Context, res *domain.Reservation) error {
	return r.db.WithContext(ctx).Model(res).Updates(map[string]any{
		"status":       res.Status,
		"start_at":     res.Start,
		"end_at":       res.End,
		"new_start_at": res.NewStart,
		"new_end_at":   res.NewEnd,
		"price":        res.Price,
	}).Error
}

// FirstForUser returns the user's oldest reservation, or nil when there is none.
func (r *ReservationRepository) FirstForUser(ctx context.Context, userID int64) (*domain.Reservation, error) {
	var out []domain.Reservation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Limit(1).
		Find(&out).Error
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}

// OwnedIDs filters ids down to the ones belonging to userID.
func (r *ReservationRepository) OwnedIDs(ctx context.Context, userID int64, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var owned []int64
	err := r.db.WithContext(ctx).Model(&domain.Reservation{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Order("id ASC").
		Pluck("id", &owned).Error
	return owned, err
}
