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

// JobRepository persists the expiration job. The table carries a constrained
// singleton column, so the database itself enforces the single-slot rule and
// a second Schedule surfaces as a unique violation.
type JobRepository struct {
	DB *db.Postgres
}

func (r JobRepository) Active(ctx context.Context) (*domain.ExpirationJob, error) {
	var j domain.ExpirationJob
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, job_id, expiration_date, is_active, is_cancelled, is_completed, added_by, created_at
		FROM expiration_jobs
	`).Scan(&j.ID, &j.JobID, &j.ExpirationDate, &j.IsActive, &j.IsCancelled, &j.IsCompleted, &j.AddedBy, &j.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r JobRepository) Schedule(ctx context.Context, expirationDate time.Time, addedBy int64) (*domain.ExpirationJob, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	jobID, err := nextSeq(ctx, tx, ports.SeqJobs)
	if err != nil {
		return nil, err
	}

	j := domain.ExpirationJob{
		JobID:          jobID,
		ExpirationDate: expirationDate,
		IsActive:       true,
		AddedBy:        addedBy,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO expiration_jobs (job_id, expiration_date, added_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, jobID, expirationDate, addedBy).Scan(&j.ID, &j.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ports.ErrDuplicate
		}
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO job_logs (job_id, expiration_date, added_by)
		VALUES ($1, $2, $3)
	`, jobID, expirationDate, addedBy)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &j, nil
}

func (r JobRepository) Delete(ctx context.Context, jobID int64) error {
	tag, err := r.DB.Pool.Exec(ctx,
		`DELETE FROM expiration_jobs WHERE job_id = $1`, jobID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r JobRepository) LogOutcome(ctx context.Context, jobID int64, completed, cancelled bool) error {
	_, err := r.DB.Pool.Exec(ctx, `
		UPDATE job_logs
		SET is_active = FALSE, is_completed = $2, is_cancelled = $3
		WHERE job_id = $1
	`, jobID, completed, cancelled)
	return err
}
