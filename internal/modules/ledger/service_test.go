package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservehub/internal/domain"
	"reservehub/internal/pkg/testdb"
)

func setupTestService(t *testing.T) (*Service, *domain.User) {
	t.Helper()
	db := testdb.Open(t)
	u := testdb.CreateUser(t, db, "ledger@example.com", 1000)
	return NewService(db), u
}

func TestCreditAndDebitFlow(t *testing.T) {
	svc, u := setupTestService(t)
	ctx := context.Background()

	txn, err := svc.Debit(ctx, Entry{UserID: u.ID, Amount: 400, Kind: domain.TxReservationDebit, Reference: "reservation:1"})
	require.NoError(t, err)
	assert.Equal(t, int64(-400), txn.Amount)
	assert.Equal(t, int64(600), txn.BalanceAfter)

	txn, err = svc.Credit(ctx, Entry{UserID: u.ID, Amount: 300, Kind: domain.TxReviewReward})
	require.NoError(t, err)
	assert.Equal(t, int64(300), txn.Amount)
	assert.Equal(t, int64(900), txn.BalanceAfter)

	balance, err := svc.Balance(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(900), balance)

	txns, total, err := svc.History(ctx, u.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, txns, 2)
}

func TestDebitInsufficientFundsLeavesBalance(t *testing.T) {
	svc, u := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Debit(ctx, Entry{UserID: u.ID, Amount: 1001, Kind: domain.TxReservationDebit})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	balance, err := svc.Balance(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance)

	_, total, err := svc.History(ctx, u.ID, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestDebitExactBalanceReachesZero(t *testing.T) {
	svc, u := setupTestService(t)

	txn, err := svc.Debit(context.Background(), Entry{UserID: u.ID, Amount: 1000, Kind: domain.TxReservationDebit})
	require.NoError(t, err)
	assert.Zero(t, txn.BalanceAfter)
}

func TestRejectsNonPositiveAmount(t *testing.T) {
	svc, u := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, Entry{UserID: u.ID, Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Debit(ctx, Entry{UserID: u.ID, Amount: -5})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestIdempotencyKeyAppliesOnce(t *testing.T) {
	svc, u := setupTestService(t)
	ctx := context.Background()
	e := Entry{UserID: u.ID, Amount: 250, Kind: domain.TxCancellationRefund, IdempotencyKey: "refund:reservation:7"}

	first, err := svc.Credit(ctx, e)
	require.NoError(t, err)
	second, err := svc.Credit(ctx, e)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	balance, err := svc.Balance(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), balance)
}

func TestUnknownUser(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.Credit(context.Background(), Entry{UserID: 9999, Amount: 10})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Balance(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
