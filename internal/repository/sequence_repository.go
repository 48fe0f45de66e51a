package repository

import (
	"context"

	"rewardshub-backend/internal/db"

	"github.com/jackc/pgx/v5"
)

// SequenceRepository allocates external ids from named counters. The upsert
// makes Next atomic: concurrent callers never observe the same value.
type SequenceRepository struct {
	DB *db.Postgres
}

func (r SequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	return nextSeq(ctx, r.DB.Pool, name)
}

// nextSeq runs against either the pool or an open transaction so that
// repositories can allocate ids inside their own atomic writes.
func nextSeq(ctx context.Context, q querier, name string) (int64, error) {
	var seq int64
	err := q.QueryRow(ctx, `
		INSERT INTO counters (name, seq) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1
		RETURNING seq
	`, name).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// querier is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}
