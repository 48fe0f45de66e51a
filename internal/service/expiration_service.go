package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/ports"
)

const expiryDescription = "Reward Points Expired"

// ExpirationService owns the single-slot expiration job: scheduling it,
// cancelling it, and running the daily tick that fires it on its date.
type ExpirationService struct {
	Jobs      ports.JobStore
	Rewards   ports.RewardStore
	Ledger    ports.PointsLedger
	Employees ports.EmployeeDirectory
	Loc       *time.Location
	Now       func() time.Time
}

func (s ExpirationService) now() time.Time {
	t := time.Now()
	if s.Now != nil {
		t = s.Now()
	}
	if s.Loc != nil {
		t = t.In(s.Loc)
	}
	return t
}

// Schedule fills the job slot. A job already in the slot is a conflict
// regardless of its date.
func (s ExpirationService) Schedule(ctx context.Context, actor domain.Actor, expirationDate time.Time) (*domain.ExpirationJob, error) {
	today := dateOnly(s.now())
	if dateOnly(expirationDate.In(today.Location())).Before(today) {
		return nil, validationFailure("expiration date is in the past", nil)
	}

	job, err := s.Jobs.Schedule(ctx, expirationDate, actor.EmployeeID)
	if errors.Is(err, ports.ErrDuplicate) {
		return nil, failure(KindConflict, "an expiration job is already in queue")
	}
	if err != nil {
		return nil, internalFailure("schedule expiration job", err)
	}
	return job, nil
}

// Cancel empties the slot and records the cancellation in the job log.
func (s ExpirationService) Cancel(ctx context.Context, actor domain.Actor) error {
	job, err := s.Jobs.Active(ctx)
	if errors.Is(err, ports.ErrNotFound) {
		return failure(KindNotFound, "no expiration job scheduled")
	}
	if err != nil {
		return internalFailure("fetch expiration job", err)
	}

	if err := s.Jobs.Delete(ctx, job.JobID); err != nil {
		return internalFailure("delete expiration job", err)
	}
	if err := s.Jobs.LogOutcome(ctx, job.JobID, false, true); err != nil {
		slog.Error("job log update failed", "jobId", job.JobID, "error", err)
	}
	return nil
}

// Active returns the scheduled job, if any.
func (s ExpirationService) Active(ctx context.Context) (*domain.ExpirationJob, error) {
	job, err := s.Jobs.Active(ctx)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, failure(KindNotFound, "no expiration job scheduled")
	}
	if err != nil {
		return nil, internalFailure("fetch expiration job", err)
	}
	return job, nil
}

// Tick runs one scheduler pass: when the job's date is today, it expires
// every unclaimed coupon, zeroes every employee's available balance via a
// compensating debit, then completes and removes the job.
func (s ExpirationService) Tick(ctx context.Context) error {
	job, err := s.Jobs.Active(ctx)
	if errors.Is(err, ports.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	today := dateOnly(s.now())
	jobDate := dateOnly(job.ExpirationDate.In(today.Location()))
	if !jobDate.Equal(today) {
		return nil
	}

	expired, err := s.Rewards.ExpireAll(ctx)
	if err != nil {
		return err
	}
	slog.Info("expired outstanding coupons", "count", expired)

	employees, err := s.Employees.All(ctx)
	if err != nil {
		return err
	}
	for _, e := range employees {
		if _, err := s.Ledger.ExpireAvailable(ctx, e.EmployeeID, expiryDescription); err != nil {
			slog.Error("balance expiry failed", "employeeId", e.EmployeeID, "error", err)
		}
	}

	if err := s.Jobs.Delete(ctx, job.JobID); err != nil {
		return err
	}
	if err := s.Jobs.LogOutcome(ctx, job.JobID, true, false); err != nil {
		slog.Error("job log update failed", "jobId", job.JobID, "error", err)
	}
	slog.Info("expiration job completed", "jobId", job.JobID)
	return nil
}

// SweepPastDue removes a job whose date passed while the process was down.
// The log row keeps isCancelled false so a lapsed job stays distinguishable
// from a user-cancelled one.
func (s ExpirationService) SweepPastDue(ctx context.Context) error {
	job, err := s.Jobs.Active(ctx)
	if errors.Is(err, ports.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	today := dateOnly(s.now())
	jobDate := dateOnly(job.ExpirationDate.In(today.Location()))
	if !jobDate.Before(today) {
		return nil
	}

	if err := s.Jobs.Delete(ctx, job.JobID); err != nil {
		return err
	}
	if err := s.Jobs.LogOutcome(ctx, job.JobID, false, false); err != nil {
		slog.Error("job log update failed", "jobId", job.JobID, "error", err)
	}
	slog.Info("removed past-due expiration job", "jobId", job.JobID, "expirationDate", job.ExpirationDate)
	return nil
}

// Run drives the scheduler loop until ctx is cancelled.
func (s ExpirationService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				slog.Error("expiration tick failed", "error", err)
			}
		}
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
