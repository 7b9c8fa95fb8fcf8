package report

import (
	"context"
	"fmt"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/repository"
)

const noData = "No data"

type Repository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountReservations(ctx context.Context) (int64, error)
	CountReviews(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[domain.ReservationStatus]int64, error)
	Revenue(ctx context.Context) (int64, error)
	MostPopular(ctx context.Context) (*repository.ServicePopularity, error)
}

// Summary is the staff data summary shared by every export format.
type Summary struct {
	TotalReservations       int64                              `json:"total_reservations"`
	TotalReviews            int64                              `json:"total_reviews"`
	TotalRevenue            int64                              `json:"total_revenue"`
	TotalUsers              int64                              `json:"total_users"`
	MostPopularService      string                             `json:"most_popular_service"`
	MostPopularServiceCount int64                              `json:"most_popular_service_count"`
	ReservationsByStatus    map[domain.ReservationStatus]int64 `json:"reservations_by_status"`
	GeneratedAt             time.Time                          `json:"generated_at"`
}

// Rows is the two-column statistic table used by the CSV and PDF exports.
func (s *Summary) Rows() [][2]string {
	return [][2]string{
		{"Reservations", fmt.Sprint(s.TotalReservations)},
		{"Reviews", fmt.Sprint(s.TotalReviews)},
		{"Revenue (points)", fmt.Sprintf("%.2f", float64(s.TotalRevenue))},
		{"Users", fmt.Sprint(s.TotalUsers)},
		{"Most popular service", s.MostPopularService},
		{"Reservations of that service", fmt.Sprint(s.MostPopularServiceCount)},
	}
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	sum := &Summary{MostPopularService: noData, GeneratedAt: s.now().UTC()}

	var err error
	if sum.TotalReservations, err = s.repo.CountReservations(ctx); err != nil {
		return nil, fmt.Errorf("count reservations: %w", err)
	}
	if sum.TotalReviews, err = s.repo.CountReviews(ctx); err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}
	if sum.TotalRevenue, err = s.repo.Revenue(ctx); err != nil {
		return nil, fmt.Errorf("revenue: %w", err)
	}
	if sum.TotalUsers, err = s.repo.CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if sum.ReservationsByStatus, err = s.repo.CountByStatus(ctx); err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}

	top, err := s.repo.MostPopular(ctx)
	if err != nil {
		return nil, fmt.Errorf("most popular service: %w", err)
	}
	if top != nil {
		sum.MostPopularService = top.ServiceName
		sum.MostPopularServiceCount = top.Count
	}
	return sum, nil
}
