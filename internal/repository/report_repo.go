package repository

import (
	"context"

	"reservehub/internal/domain"

	"gorm.io/gorm"
)

// ServicePopularity is a service with its reservation count.
type ServicePopularity struct {
	ServiceID   int64
	ServiceName string
	Count       int64
}

// ReportRepository runs the read-only aggregates behind the staff reports.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, err
}

func (r *ReportRepository) CountReservations(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Reservation{}).Count(&n).Error
	return n, err
}

func (r *ReportRepository) CountReviews(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).Count(&n).Error
	return n, err
}

func (r *ReportRepository) CountByStatus(ctx context.Context) (map[domain.ReservationStatus]int64, error) {
	var rows []struct {
		Status domain.ReservationStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Reservation{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.ReservationStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// Revenue is the sum of all reservation prices ever charged.
func (r *ReportRepository) Revenue(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Reservation{}).
		Select("COALESCE(SUM(price), 0)").
		Scan(&total).Error
	return total, err
}

// MostPopular returns the service whose options hold the most reservations,
// or nil when nothing was reserved. Ties go to the lower service id.
func (r *ReportRepository) MostPopular(ctx context.Context) (*ServicePopularity, error) {
	var rows []ServicePopularity
	err := r.db.WithContext(ctx).Table("reservations").
		Select("services.id AS service_id, services.name AS service_name, COUNT(reservations.id) AS count").
		Joins("JOIN service_options ON service_options.id = reservations.option_id").
		Joins("JOIN services ON services.id = service_options.service_id").
		Group("services.id, services.name").
		Order("count DESC, services.id ASC").
		Limit(1).
		Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}
