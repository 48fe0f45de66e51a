package repository

import (
	"context"
	"errors"
	"time"

	"rewardshub-backend/internal/db"
	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/ports"

	"github.com/jackc/pgx/v5"
)

// PointsRepository owns the points wallet and its transaction log. Each
// mutation writes the balance change and the ledger entry in one database
// transaction, so a crash can never leave one without the other.
type PointsRepository struct {
	DB *db.Postgres
}

func (r PointsRepository) Balance(ctx context.Context, employeeID int64) (*domain.PointsBalance, error) {
	var b domain.PointsBalance
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT employee_id, total, redeemed, available, updated_at
		FROM points WHERE employee_id = $1
	`, employeeID).Scan(&b.EmployeeID, &b.Total, &b.Redeemed, &b.Available, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r PointsRepository) Credit(ctx context.Context, employeeID, amount int64, description string) (*domain.Transaction, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var after int64
	err = tx.QueryRow(ctx, `
		INSERT INTO points (employee_id, total, redeemed, available)
		VALUES ($1, $2, 0, $2)
		ON CONFLICT (employee_id) DO UPDATE
		SET total = points.total + $2, available = points.available + $2, updated_at = now()
		RETURNING available
	`, employeeID, amount).Scan(&after)
	if err != nil {
		return nil, err
	}

	entry, err := insertLedgerEntry(ctx, tx, employeeID, description, true, amount, after)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r PointsRepository) Debit(ctx context.Context, employeeID, amount int64, description string) (*domain.Transaction, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var after int64
	err = tx.QueryRow(ctx, `
		UPDATE points
		SET redeemed = redeemed + $2, available = available - $2, updated_at = now()
		WHERE employee_id = $1 AND available >= $2
		RETURNING available
	`, employeeID, amount).Scan(&after)
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish a missing wallet from a failed guard.
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM points WHERE employee_id = $1)`,
			employeeID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, ports.ErrNotFound
		}
		return nil, ports.ErrInsufficientBalance
	}
	if err != nil {
		return nil, err
	}

	entry, err := insertLedgerEntry(ctx, tx, employeeID, description, false, amount, after)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r PointsRepository) Refund(ctx context.Context, employeeID, amount int64, description string) (*domain.Transaction, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var after int64
	err = tx.QueryRow(ctx, `
		UPDATE points
		SET redeemed = redeemed - $2, available = available + $2, updated_at = now()
		WHERE employee_id = $1
		RETURNING available
	`, employeeID, amount).Scan(&after)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	entry, err := insertLedgerEntry(ctx, tx, employeeID, description, true, amount, after)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r PointsRepository) ExpireAvailable(ctx context.Context, employeeID int64, description string) (*domain.Transaction, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var available int64
	err = tx.QueryRow(ctx,
		`SELECT available FROM points WHERE employee_id = $1 FOR UPDATE`,
		employeeID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if available <= 0 {
		return nil, nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE points
		SET redeemed = redeemed + $2, available = 0, updated_at = now()
		WHERE employee_id = $1
	`, employeeID, available)
	if err != nil {
		return nil, err
	}

	entry, err := insertLedgerEntry(ctx, tx, employeeID, description, false, available, 0)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r PointsRepository) Transactions(ctx context.Context, employeeID int64, sortAsc bool) ([]domain.Transaction, error) {
	order := "DESC"
	if sortAsc {
		order = "ASC"
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, transaction_id, employee_id, description, is_credited, amount, balance_after, created_at
		FROM transactions
		WHERE employee_id = $1
		ORDER BY created_at `+order+`, id `+order, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.TransactionID, &t.EmployeeID, &t.Description,
			&t.IsCredited, &t.Amount, &t.BalanceAfter, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func insertLedgerEntry(ctx context.Context, tx pgx.Tx, employeeID int64, description string, credited bool, amount, after int64) (*domain.Transaction, error) {
	seq, err := nextSeq(ctx, tx, ports.SeqTransactions)
	if err != nil {
		return nil, err
	}
	var id int64
	var createdAt time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (transaction_id, employee_id, description, is_credited, amount, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, seq, employeeID, description, credited, amount, after).Scan(&id, &createdAt)
	if err != nil {
		return nil, err
	}
	return &domain.Transaction{
		ID:            id,
		TransactionID: seq,
		EmployeeID:    employeeID,
		Description:   description,
		IsCredited:    credited,
		Amount:        amount,
		BalanceAfter:  after,
		CreatedAt:     createdAt,
	}, nil
}
