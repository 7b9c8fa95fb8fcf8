package domain

import (
	"errors"
	"time"
)

var ErrInvalidTransition = errors.New("invalid reservation status transition")

type ReservationStatus string

const (
	ReservationPending             ReservationStatus = "pending"
	ReservationConfirmed           ReservationStatus = "confirmed"
	ReservationCancelled           ReservationStatus = "cancelled"
	ReservationPendingCancellation ReservationStatus = "pending_cancellation"
	ReservationPendingModification ReservationStatus = "pending_modification"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCancelled,
		ReservationPendingCancellation, ReservationPendingModification:
		return true
	}
	return false
}

type ReservationEvent string

const (
	EventConfirm             ReservationEvent = "confirm"
	EventCancel              ReservationEvent = "cancel"
	EventRequestCancellation ReservationEvent = "request_cancellation"
	EventApproveCancellation ReservationEvent = "approve_cancellation"
	EventRequestModification ReservationEvent = "request_modification"
	EventApproveModification ReservationEvent = "approve_modification"
	EventRejectModification  ReservationEvent = "reject_modification"
)

var reservationTransitions = map[ReservationEvent]map[ReservationStatus]ReservationStatus{
	EventConfirm: {
		ReservationPending: ReservationConfirmed,
	},
	// staff cancellation without a user request
	EventCancel: {
		ReservationPending:   ReservationCancelled,
		ReservationConfirmed: ReservationCancelled,
	},
	EventRequestCancellation: {
		ReservationPending:   ReservationPendingCancellation,
		ReservationConfirmed: ReservationPendingCancellation,
	},
	EventApproveCancellation: {
		ReservationPendingCancellation: ReservationCancelled,
	},
	EventRequestModification: {
		ReservationPending:   ReservationPendingModification,
		ReservationConfirmed: ReservationPendingModification,
	},
	EventApproveModification: {
		ReservationPendingModification: ReservationConfirmed,
	},
	EventRejectModification: {
		ReservationPendingModification: ReservationConfirmed,
	},
}

// Next returns the status reached from s on ev.
func (s ReservationStatus) Next(ev ReservationEvent) (ReservationStatus, error) {
	if to, ok := reservationTransitions[ev][s]; ok {
		return to, nil
	}
	return s, ErrInvalidTransition
}

type Reservation struct {
	ID          int64             `json:"id" gorm:"primaryKey"`
	UserID      int64             `json:"user_id" gorm:"not null;index"`
	OptionID    *int64            `json:"option_id,omitempty" gorm:"index"`
	ServiceName string            `json:"service_name" gorm:"size:255;not null"`
	ServiceType ServiceType       `json:"service_type" gorm:"size:32;not null"`
	Start       time.Time         `json:"start" gorm:"column:start_at;not null"`
	End         *time.Time        `json:"end,omitempty" gorm:"column:end_at"`
	NewStart    *time.Time        `json:"new_start,omitempty" gorm:"column:new_start_at"`
	NewEnd      *time.Time        `json:"new_end,omitempty" gorm:"column:new_end_at"`
	Status      ReservationStatus `json:"status" gorm:"size:32;not null;index"`
	Price       int64             `json:"price" gorm:"not null"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	User   *User          `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Option *ServiceOption `json:"option,omitempty" gorm:"foreignKey:OptionID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// Apply moves the reservation along ev, touching the proposed dates the way
// the modification events require.
func (r *Reservation) Apply(ev ReservationEvent) error {
	next, err := r.Status.Next(ev)
	if err != nil {
		return err
	}

	switch ev {
	case EventApproveModification:
		if r.NewStart != nil {
			r.Start = *r.NewStart
		}
		if r.NewEnd != nil {
			end := *r.NewEnd
			r.End = &end
		}
		r.NewStart, r.NewEnd = nil, nil
	case EventRejectModification:
		r.NewStart, r.NewEnd = nil, nil
	}

	r.Status = next
	return nil
}
