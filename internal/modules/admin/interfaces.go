package admin

import (
	"context"

	"reservehub/internal/domain"
	"reservehub/internal/modules/ledger"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Search(ctx context.Context, query string, limit, offset int) ([]domain.User, int64, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
}

type Ledger interface {
	Credit(ctx context.Context, e ledger.Entry) (*domain.BalanceTransaction, error)
	Debit(ctx context.Context, e ledger.Entry) (*domain.BalanceTransaction, error)
}
