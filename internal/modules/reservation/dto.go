package reservation

import (
	"time"

	"reservehub/internal/domain"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"

	displayDate     = "02-01-2006"
	displayDateTime = "02-01-2006 15:04"
)

type CreateRequest struct {
	ServiceID int64  `json:"service_id" binding:"required" validate:"required,gt=0"`
	OptionID  int64  `json:"option_id" binding:"required" validate:"required,gt=0"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	DateTime  string `json:"datetime"`
}

type ChangeDateRequest struct {
	NewStart string  `json:"new_start" binding:"required"`
	NewEnd   *string `json:"new_end"`
}

type BulkRequest struct {
	IDs []int64 `json:"ids" binding:"required" validate:"required,min=1,dive,gt=0"`
}

type BulkResult struct {
	ID    int64  `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type MessageRequest struct {
	Subject string `json:"subject" validate:"max=255"`
	Content string `json:"content" binding:"required" validate:"required"`
}

// View is a reservation as shown to its owner, with display-formatted dates.
type View struct {
	ID            int64                    `json:"id"`
	ServiceName   string                   `json:"service_name"`
	ServiceType   domain.ServiceType       `json:"service_type"`
	OptionID      *int64                   `json:"option_id,omitempty"`
	OptionName    string                   `json:"option_name,omitempty"`
	Start         string                   `json:"start"`
	End           string                   `json:"end,omitempty"`
	NewStart      string                   `json:"new_start,omitempty"`
	NewEnd        string                   `json:"new_end,omitempty"`
	AvailableFrom string                   `json:"available_from,omitempty"`
	AvailableTo   string                   `json:"available_to,omitempty"`
	Status        domain.ReservationStatus `json:"status"`
	Price         int64                    `json:"price"`
	CreatedAt     time.Time                `json:"created_at"`
}

func toView(r *domain.Reservation) View {
	layout := displayDateTime
	if r.ServiceType.DateOnly() {
		layout = displayDate
	}
	v := View{
		ID:          r.ID,
		ServiceName: r.ServiceName,
		ServiceType: r.ServiceType,
		OptionID:    r.OptionID,
		Start:       r.Start.UTC().Format(layout),
		End:         formatPtr(r.End, layout),
		NewStart:    formatPtr(r.NewStart, layout),
		NewEnd:      formatPtr(r.NewEnd, layout),
		Status:      r.Status,
		Price:       r.Price,
		CreatedAt:   r.CreatedAt,
	}
	if r.Option != nil {
		v.OptionName = r.Option.Name
		v.AvailableFrom = formatPtr(r.Option.AvailableFrom, displayDate)
		v.AvailableTo = formatPtr(r.Option.AvailableTo, displayDate)
	}
	return v
}

func formatPtr(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(layout)
}
