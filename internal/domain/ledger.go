package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionKind string

const (
	TxReservationDebit   TransactionKind = "reservation_debit"
	TxCancellationRefund TransactionKind = "cancellation_refund"
	TxReviewReward       TransactionKind = "review_reward"
	TxReviewPenalty      TransactionKind = "review_penalty"
	TxAdjustment         TransactionKind = "adjustment"
)

// BalanceTransaction is one append-only entry of a user's points history.
// Amount is signed: credits are positive, debits negative.
type BalanceTransaction struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         int64           `json:"user_id" gorm:"not null;index"`
	Amount         int64           `json:"amount" gorm:"not null"`
	Kind           TransactionKind `json:"kind" gorm:"size:32;not null;index"`
	Reference      string          `json:"reference,omitempty" gorm:"size:128;index"`
	IdempotencyKey *string         `json:"-" gorm:"size:128;uniqueIndex"`
	BalanceAfter   int64           `json:"balance_after" gorm:"not null"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (BalanceTransaction) TableName() string {
	return "balance_transactions"
}

func (t *BalanceTransaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
