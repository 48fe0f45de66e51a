package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBalanceLazyWallet(t *testing.T) {
	ledger := newFakeLedger()
	svc := LedgerService{Ledger: ledger}

	b, err := svc.GetBalance(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.Total)
	assert.Equal(t, int64(0), b.Available)
	assert.Equal(t, int64(42), b.EmployeeID)
}

func TestTransactionsViews(t *testing.T) {
	ledger := newFakeLedger()
	svc := LedgerService{Ledger: ledger}
	ctx := context.Background()

	_, err := ledger.Credit(ctx, 1, 50, "Welcome grant")
	require.NoError(t, err)
	_, err = ledger.Debit(ctx, 1, 40, "Purchase Order No 1 - Hoodie")
	require.NoError(t, err)

	views, err := svc.Transactions(ctx, 1, true)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "T0000001", views[0].TransactionID)
	assert.Equal(t, "+50", views[0].Amount)
	assert.Equal(t, int64(50), views[0].BalanceAfter)

	assert.Equal(t, "-40", views[1].Amount)
	assert.Equal(t, int64(10), views[1].BalanceAfter)
}
