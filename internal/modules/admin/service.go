package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reservehub/internal/domain"
	"reservehub/internal/modules/ledger"
	"reservehub/internal/pkg/logger"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrZeroAmount     = errors.New("amount must not be zero")
	ErrSelfDeactivate = errors.New("staff cannot deactivate their own account")
)

type Service struct {
	users  UserRepository
	ledger Ledger
}

func NewService(users UserRepository, ledgerSvc Ledger) *Service {
	return &Service{users: users, ledger: ledgerSvc}
}

// ListUsers searches email and names; an empty query lists everyone.
func (s *Service) ListUsers(ctx context.Context, query string, limit, offset int) ([]UserRow, int64, error) {
	users, total, err := s.users.Search(ctx, strings.TrimSpace(query), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	rows := make([]UserRow, 0, len(users))
	for i := range users {
		rows = append(rows, toUserRow(&users[i]))
	}
	return rows, total, nil
}

func (s *Service) SetActive(ctx context.Context, staffID, userID int64, active bool) (*UserRow, error) {
	if staffID == userID && !active {
		return nil, ErrSelfDeactivate
	}
	if err := s.users.UpdateFields(ctx, userID, map[string]any{"is_active": active}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.getUser(ctx, userID)
}

// AdjustBalance books a manual correction. Positive amounts credit, negative
// amounts debit; idemKey makes a retried request a no-op.
func (s *Service) AdjustBalance(ctx context.Context, staffID, userID int64, req AdjustBalanceRequest, idemKey string) (*domain.BalanceTransaction, error) {
	if req.Amount == 0 {
		return nil, ErrZeroAmount
	}
	entry := ledger.Entry{
		UserID:    userID,
		Amount:    req.Amount,
		Kind:      domain.TxAdjustment,
		Reference: fmt.Sprintf("adjustment:%d:%s", staffID, strings.TrimSpace(req.Reason)),
	}
	if idemKey = strings.TrimSpace(idemKey); idemKey != "" {
		entry.IdempotencyKey = fmt.Sprintf("adjustment:%d:%s", staffID, idemKey)
	}

	var (
		txn *domain.BalanceTransaction
		err error
	)
	if req.Amount > 0 {
		txn, err = s.ledger.Credit(ctx, entry)
	} else {
		entry.Amount = -req.Amount
		txn, err = s.ledger.Debit(ctx, entry)
	}
	if errors.Is(err, ledger.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "balance adjusted", "staff_id", staffID, "user_id", userID, "amount", req.Amount, "balance_after", txn.BalanceAfter)
	return txn, nil
}

func (s *Service) getUser(ctx context.Context, id int64) (*UserRow, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	row := toUserRow(u)
	return &row, nil
}
