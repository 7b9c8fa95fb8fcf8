package catalog

import (
	"context"

	"reservehub/internal/domain"
	"reservehub/internal/repository"
)

type CatalogRepository interface {
	ListServices(ctx context.Context, f repository.ServiceFilter) ([]domain.Service, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	GetOption(ctx context.Context, id int64) (*domain.ServiceOption, error)
	ListOptionsByType(ctx context.Context, t domain.ServiceType) ([]domain.ServiceOption, error)
	Cities(ctx context.Context) ([]string, error)
	CreateService(ctx context.Context, s *domain.Service) error
	UpdateService(ctx context.Context, s *domain.Service) error
	DeleteService(ctx context.Context, id int64) error
	CreateOption(ctx context.Context, o *domain.ServiceOption) error
	UpdateOption(ctx context.Context, o *domain.ServiceOption) error
	DeleteOption(ctx context.Context, id int64) error
	GetStatus(ctx context.Context) (*domain.ServiceStatus, error)
	SaveStatus(ctx context.Context, st *domain.ServiceStatus) error
}

type ReviewLister interface {
	ListByService(ctx context.Context, serviceID int64) ([]domain.Review, error)
}

type UnreadCounter interface {
	CountUnreadReplies(ctx context.Context, userID int64) (int64, error)
}
