package ledger

import (
	"context"
	"errors"
	"fmt"

	"reservehub/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrUserNotFound      = errors.New("user not found")
)

// Entry describes one balance movement. Amount is always positive; the
// direction comes from calling Credit or Debit.
type Entry struct {
	UserID         int64
	Amount         int64
	Kind           domain.TransactionKind
	Reference      string
	IdempotencyKey string
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Credit(ctx context.Context, e Entry) (*domain.BalanceTransaction, error) {
	var txn *domain.BalanceTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = s.CreditTx(tx, e)
		return err
	})
	return txn, err
}

func (s *Service) Debit(ctx context.Context, e Entry) (*domain.BalanceTransaction, error) {
	var txn *domain.BalanceTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = s.DebitTx(tx, e)
		return err
	})
	return txn, err
}

// CreditTx adds points inside the caller's transaction.
func (s *Service) CreditTx(tx *gorm.DB, e Entry) (*domain.BalanceTransaction, error) {
	return apply(tx, e, 1)
}

// DebitTx removes points inside the caller's transaction. The balance never
// goes below zero.
func (s *Service) DebitTx(tx *gorm.DB, e Entry) (*domain.BalanceTransaction, error) {
	return apply(tx, e, -1)
}

// FindByKeyTx returns the transaction recorded under key, or nil.
func (s *Service) FindByKeyTx(tx *gorm.DB, key string) (*domain.BalanceTransaction, error) {
	if key == "" {
		return nil, nil
	}
	var txns []domain.BalanceTransaction
	if err := tx.Where("idempotency_key = ?", key).Limit(1).Find(&txns).Error; err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, nil
	}
	return &txns[0], nil
}

func (s *Service) Balance(ctx context.Context, userID int64) (int64, error) {
	var u domain.User
	if err := s.db.WithContext(ctx).Select("id", "balance").First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return u.Balance, nil
}

// History lists the user's transactions, newest first.
func (s *Service) History(ctx context.Context, userID int64, limit, offset int) ([]domain.BalanceTransaction, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.BalanceTransaction{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []domain.BalanceTransaction
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

func apply(tx *gorm.DB, e Entry, sign int64) (*domain.BalanceTransaction, error) {
	if e.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	// Lock the user row first so that two requests carrying the same key
	// serialise here and the second one sees the first one's row.
	var user domain.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "balance").
		First(&user, e.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var key *string
	if e.IdempotencyKey != "" {
		var existing []domain.BalanceTransaction
		if err := tx.Where("idempotency_key = ?", e.IdempotencyKey).Limit(1).Find(&existing).Error; err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return &existing[0], nil
		}
		k := e.IdempotencyKey
		key = &k
	}

	delta := sign * e.Amount
	if user.Balance+delta < 0 {
		return nil, ErrInsufficientFunds
	}

	res := tx.Model(&domain.User{}).Where("id = ?", user.ID).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return nil, fmt.Errorf("update balance: %w", res.Error)
	}

	txn := &domain.BalanceTransaction{
		UserID:         user.ID,
		Amount:         delta,
		Kind:           e.Kind,
		Reference:      e.Reference,
		IdempotencyKey: key,
		BalanceAfter:   user.Balance + delta,
	}
	if err := tx.Omit("User").Create(txn).Error; err != nil {
		return nil, fmt.Errorf("append transaction: %w", err)
	}
	return txn, nil
}
