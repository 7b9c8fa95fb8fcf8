package domain

import "time"

type MessageSender string

const (
	SenderAdmin MessageSender = "admin"
	SenderUser  MessageSender = "user"
)

type Message struct {
	ID           int64         `json:"id" gorm:"primaryKey"`
	UserID       int64         `json:"user_id" gorm:"not null;index"`
	Subject      string        `json:"subject" gorm:"size:255;not null"`
	Content      string        `json:"content" gorm:"type:text;not null"`
	Sender       MessageSender `json:"sender" gorm:"size:16;not null;default:admin;index"`
	IsRead       bool          `json:"is_read" gorm:"not null;default:false"`
	Response     *string       `json:"response,omitempty" gorm:"type:text"`
	ResponseDate *time.Time    `json:"response_date,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`

	// ReservationIDs is filled from message_reservations by the repository.
	ReservationIDs []int64 `json:"reservation_ids" gorm:"-"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// MessageReservation links a message to the reservations it talks about.
type MessageReservation struct {
	MessageID     int64 `gorm:"primaryKey;autoIncrement:false"`
	ReservationID int64 `gorm:"primaryKey;autoIncrement:false;index"`

	Message     *Message     `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
	Reservation *Reservation `gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE"`
}

func (MessageReservation) TableName() string { return "message_reservations" }
