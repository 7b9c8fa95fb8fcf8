package repository

import (
	"context"
	"errors"
	"time"

	"reservehub/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ServiceFilter narrows the public catalog listing. Zero values mean "no filter".
type ServiceFilter struct {
	Type     domain.ServiceType
	Location string
	MaxPrice *int64
	CheckIn  *time.Time
	CheckOut *time.Time
	OptionID int64
}

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const (
	optionExists      = "EXISTS (SELECT 1 FROM service_options o WHERE o.service_id = services.id)"
	optionPriceAtMost = "EXISTS (SELECT 1 FROM service_options o WHERE o.service_id = services.id AND o.price <= ?)"
	optionAvailableIn = "EXISTS (SELECT 1 FROM service_options o WHERE o.service_id = services.id AND o.available_from <= ? AND o.available_to >= ?)"
)

// ListServices applies f and returns matching services with their options.
//
// The price filter keeps services without options. The date filter drops
// them unless a type filter is also set, in which case option-less services
// of that type are kept.
func (r *CatalogRepository) ListServices(ctx context.Context, f ServiceFilter) ([]domain.Service, error) {
	q := r.db.WithContext(ctx).Model(&domain.Service{})

	if f.Type != "" {
		q = q.Where("services.type = ?", f.Type)
	}
	if f.Location != "" {
		q = q.Where("services.location = ?", f.Location)
	}
	if f.MaxPrice != nil {
		q = q.Where("("+optionPriceAtMost+" OR NOT "+optionExists+")", *f.MaxPrice)
	}
	if f.OptionID > 0 {
		q = q.Where("EXISTS (SELECT 1 FROM service_options o WHERE o.service_id = services.id AND o.id = ?)", f.OptionID)
	}
	if f.CheckIn != nil && f.CheckOut != nil {
		if f.Type != "" {
			q = q.Where("("+optionAvailableIn+" OR NOT "+optionExists+")", *f.CheckOut, *f.CheckIn)
		} else {
			q = q.Where(optionAvailableIn, *f.CheckOut, *f.CheckIn)
		}
	}

	var services []domain.Service
	err := q.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("service_options.price ASC, service_options.id ASC")
	}).Order("services.id ASC").Find(&services).Error
	return services, err
}

func (r *CatalogRepository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	var s domain.Service
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("service_options.id ASC") }).
		First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CatalogRepository) GetOption(ctx context.Context, id int64) (*domain.ServiceOption, error) {
	var o domain.ServiceOption
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOptionsByType returns the options of every service of type t (all
// options when t is empty).
func (r *CatalogRepository) ListOptionsByType(ctx context.Context, t domain.ServiceType) ([]domain.ServiceOption, error) {
	q := r.db.WithContext(ctx).Model(&domain.ServiceOption{}).
		Joins("JOIN services ON services.id = service_options.service_id")
	if t != "" {
		q = q.Where("services.type = ?", t)
	}
	var options []domain.ServiceOption
	err := q.Order("service_options.id ASC").Find(&options).Error
	return options, err
}

func (r *CatalogRepository) Cities(ctx context.Context) ([]string, error) {
	var cities []string
	err := r.db.WithContext(ctx).Model(&domain.Service{}).
		Distinct("location").
		Order("location ASC").
		Pluck("location", &cities).Error
	return cities, err
}

func (r *CatalogRepository) CreateService(ctx context.Context, s *domain.Service) error {
	return r.db.WithContext(ctx).Omit("Options").Create(s).Error
}

func (r *CatalogRepository) UpdateService(ctx context.Context, s *domain.Service) error {
	return r.db.WithContext(ctx).Omit("Options").Save(s).Error
}

func (r *CatalogRepository) DeleteService(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// SQLite does not enforce the cascade without foreign_keys=ON.
		if err := tx.Where("service_id = ?", id).Delete(&domain.ServiceOption{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Service{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *CatalogRepository) CreateOption(ctx context.Context, o *domain.ServiceOption) error {
	return r.db.WithContext(ctx).Omit("Service").Create(o).Error
}

func (r *CatalogRepository) UpdateOption(ctx context.Context, o *domain.ServiceOption) error {
	return r.db.WithContext(ctx).Omit("Service").Save(o).Error
}

// DeleteOption detaches reservations from the option before removing it.
func (r *CatalogRepository) DeleteOption(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Reservation{}).Where("option_id = ?", id).Update("option_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.ServiceOption{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// GetStatus returns the status row, or an operational default when none exists.
func (r *CatalogRepository) GetStatus(ctx context.Context) (*domain.ServiceStatus, error) {
	var st domain.ServiceStatus
	err := r.db.WithContext(ctx).Order("id ASC").First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.ServiceStatus{Status: domain.StatusOperational}, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// SaveStatus upserts the single status row.
func (r *CatalogRepository) SaveStatus(ctx context.Context, st *domain.ServiceStatus) error {
	st.ID = 1
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "message", "next_available", "updated_at"}),
	}).Create(st).Error
}
