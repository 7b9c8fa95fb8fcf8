package domain

import (
	"errors"
	"time"
)

var ErrInvalidAvailabilityWindow = errors.New("available_from must not be after available_to")

type ServiceType string

const (
	ServiceHotel      ServiceType = "Hotel"
	ServiceRestaurant ServiceType = "Restaurant"
	ServiceSpa        ServiceType = "Spa"
	ServiceTour       ServiceType = "Tour"
)

var ServiceTypes = []ServiceType{ServiceHotel, ServiceRestaurant, ServiceSpa, ServiceTour}

func (t ServiceType) Valid() bool {
	for _, v := range ServiceTypes {
		if v == t {
			return true
		}
	}
	return false
}

// DateOnly reports whether reservations of this type are shown without a time of day.
func (t ServiceType) DateOnly() bool {
	return t == ServiceHotel || t == ServiceTour
}

type Service struct {
	ID            int64       `json:"id" gorm:"primaryKey"`
	Name          string      `json:"name" gorm:"size:255;not null"`
	Location      string      `json:"location" gorm:"size:255;not null;index"`
	Type          ServiceType `json:"type" gorm:"size:32;not null;index"`
	Description   string      `json:"description,omitempty" gorm:"type:text"`
	AvailableFrom *time.Time  `json:"available_from,omitempty"`
	AvailableTo   *time.Time  `json:"available_to,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	Options []ServiceOption `json:"options,omitempty" gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// MinPrice is the cheapest loaded option, or 0 when there are none.
func (s *Service) MinPrice() int64 {
	if len(s.Options) == 0 {
		return 0
	}
	min := s.Options[0].Price
	for _, o := range s.Options[1:] {
		if o.Price < min {
			min = o.Price
		}
	}
	return min
}

func (s *Service) MaxCapacity() int {
	max := 0
	for _, o := range s.Options {
		if o.Capacity > max {
			max = o.Capacity
		}
	}
	return max
}

func (s *Service) Validate() error {
	return validateWindow(s.AvailableFrom, s.AvailableTo)
}

type ServiceOption struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	ServiceID     int64      `json:"service_id" gorm:"not null;index"`
	Name          string     `json:"name" gorm:"size:255;not null"`
	Capacity      int        `json:"capacity" gorm:"not null;default:1"`
	Price         int64      `json:"price" gorm:"not null;index"`
	AvailableFrom *time.Time `json:"available_from,omitempty" gorm:"index"`
	AvailableTo   *time.Time `json:"available_to,omitempty" gorm:"index"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Service *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

func (o *ServiceOption) Validate() error {
	return validateWindow(o.AvailableFrom, o.AvailableTo)
}

func validateWindow(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return ErrInvalidAvailabilityWindow
	}
	return nil
}

type ServiceStatusKind string

const (
	StatusOperational ServiceStatusKind = "operational"
	StatusMaintenance ServiceStatusKind = "maintenance"
	StatusDown        ServiceStatusKind = "down"
)

func (k ServiceStatusKind) Valid() bool {
	return k == StatusOperational || k == StatusMaintenance || k == StatusDown
}

// ServiceStatus is the site-wide availability banner; there is at most one row.
type ServiceStatus struct {
	ID            int64             `json:"id" gorm:"primaryKey"`
	Status        ServiceStatusKind `json:"status" gorm:"size:32;not null;default:operational"`
	Message       string            `json:"message,omitempty" gorm:"type:text"`
	NextAvailable *time.Time        `json:"next_available,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (ServiceStatus) TableName() string { return "service_status" }
