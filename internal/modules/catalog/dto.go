package catalog

import (
	"time"

	"reservehub/internal/domain"
)

const dateLayout = "2006-01-02"

type ServiceRequest struct {
	Name          string  `json:"name" binding:"required" validate:"required,max=255"`
	Location      string  `json:"location" binding:"required" validate:"required,max=255"`
	Type          string  `json:"type" binding:"required" validate:"required,servicetype"`
	Description   string  `json:"description"`
	AvailableFrom *string `json:"available_from"`
	AvailableTo   *string `json:"available_to"`
}

type OptionRequest struct {
	Name          string  `json:"name" binding:"required" validate:"required,max=255"`
	Capacity      int     `json:"capacity" validate:"gte=1"`
	Price         int64   `json:"price" validate:"gte=0"`
	AvailableFrom *string `json:"available_from"`
	AvailableTo   *string `json:"available_to"`
}

type StatusRequest struct {
	Status        string  `json:"status" binding:"required"`
	Message       string  `json:"message"`
	NextAvailable *string `json:"next_available"`
}

// ServiceSummary is a catalog row with the derived option figures.
type ServiceSummary struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Location     string             `json:"location"`
	Type         domain.ServiceType `json:"type"`
	Description  string             `json:"description,omitempty"`
	MinPrice     int64              `json:"min_price"`
	MaxCapacity  int                `json:"max_capacity"`
	OptionsCount int                `json:"options_count"`
}

func toSummary(s *domain.Service) ServiceSummary {
	return ServiceSummary{
		ID:           s.ID,
		Name:         s.Name,
		Location:     s.Location,
		Type:         s.Type,
		Description:  s.Description,
		MinPrice:     s.MinPrice(),
		MaxCapacity:  s.MaxCapacity(),
		OptionsCount: len(s.Options),
	}
}

type OptionRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ListResult struct {
	Services      []ServiceSummary `json:"services"`
	Cities        []string         `json:"cities"`
	Options       []OptionRef      `json:"options"`
	UnreadReplies int64            `json:"unread_replies"`
}

type Availability struct {
	OptionID      int64   `json:"option_id"`
	AvailableFrom *string `json:"available_from"`
	AvailableTo   *string `json:"available_to"`
}

type ReviewView struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Detail struct {
	Service      ServiceSummary         `json:"service"`
	Options      []domain.ServiceOption `json:"options"`
	Reviews      []ReviewView           `json:"reviews"`
	Availability []Availability         `json:"availability"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}

// parseDate accepts nil and the empty string as "unset".
func parseDate(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, *v, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
