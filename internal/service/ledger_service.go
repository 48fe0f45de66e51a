package service

import (
	"context"
	"errors"

	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/ports"
)

// LedgerService fronts the points wallet. Balance reads treat a missing
// wallet as all-zeros: wallets are created lazily on first credit.
type LedgerService struct {
	Ledger ports.PointsLedger
}

func (s LedgerService) GetBalance(ctx context.Context, employeeID int64) (*domain.PointsBalance, error) {
	b, err := s.Ledger.Balance(ctx, employeeID)
	if errors.Is(err, ports.ErrNotFound) {
		return &domain.PointsBalance{EmployeeID: employeeID}, nil
	}
	if err != nil {
		return nil, internalFailure("fetch balance", err)
	}
	return b, nil
}

// TransactionView is a ledger entry shaped for presentation.
type TransactionView struct {
	TransactionID string `json:"transactionId"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	BalanceAfter  int64  `json:"balance"`
	Date          string `json:"date"`
}

func (s LedgerService) Transactions(ctx context.Context, employeeID int64, sortAsc bool) ([]TransactionView, error) {
	entries, err := s.Ledger.Transactions(ctx, employeeID, sortAsc)
	if err != nil {
		return nil, internalFailure("fetch transactions", err)
	}
	views := make([]TransactionView, 0, len(entries))
	for _, t := range entries {
		views = append(views, TransactionView{
			TransactionID: t.DisplayTransactionID(),
			Description:   t.Description,
			Amount:        t.DisplayAmount(),
			BalanceAfter:  t.BalanceAfter,
			Date:          t.DisplayDate(),
		})
	}
	return views, nil
}
