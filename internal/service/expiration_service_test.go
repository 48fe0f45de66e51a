package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/ports"
)

type expirationHarness struct {
	svc       ExpirationService
	jobs      *fakeJobs
	rewards   *fakeRewards
	ledger    *fakeLedger
	employees *fakeEmployees
	now       time.Time
}

func newExpirationHarness() *expirationHarness {
	h := &expirationHarness{
		jobs:      newFakeJobs(),
		rewards:   newFakeRewards(),
		ledger:    newFakeLedger(),
		employees: newFakeEmployees(),
		now:       time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	h.employees.add(domain.Employee{EmployeeID: 1, Name: "Asha"})
	h.employees.add(domain.Employee{EmployeeID: 2, Name: "Ravi"})
	h.svc = ExpirationService{
		Jobs:      h.jobs,
		Rewards:   h.rewards,
		Ledger:    h.ledger,
		Employees: h.employees,
		Now:       func() time.Time { return h.now },
	}
	return h
}

var actorHR = domain.Actor{EmployeeID: 50, Name: "Priya"}

func TestScheduleRejectsPastDate(t *testing.T) {
	h := newExpirationHarness()
	_, err := h.svc.Schedule(context.Background(), actorHR, h.now.AddDate(0, 0, -1))
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestScheduleConflictsWhenSlotTaken(t *testing.T) {
	h := newExpirationHarness()
	ctx := context.Background()

	_, err := h.svc.Schedule(ctx, actorHR, h.now.AddDate(0, 0, 7))
	require.NoError(t, err)

	// A second job conflicts regardless of its date.
	_, err = h.svc.Schedule(ctx, actorHR, h.now.AddDate(0, 1, 0))
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestCancelEmptiesSlotAndLogs(t *testing.T) {
	h := newExpirationHarness()
	ctx := context.Background()

	job, err := h.svc.Schedule(ctx, actorHR, h.now.AddDate(0, 0, 7))
	require.NoError(t, err)

	require.NoError(t, h.svc.Cancel(ctx, actorHR))

	_, err = h.jobs.Active(ctx)
	require.Error(t, err)

	log := h.jobs.logs[job.JobID]
	require.NotNil(t, log)
	assert.False(t, log.IsActive)
	assert.False(t, log.IsCompleted)
	assert.True(t, log.IsCancelled)

	err = h.svc.Cancel(ctx, actorHR)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestTickBeforeDateDoesNothing(t *testing.T) {
	h := newExpirationHarness()
	ctx := context.Background()

	_, err := h.ledger.Credit(ctx, 1, 100, "grant")
	require.NoError(t, err)
	_, err = h.svc.Schedule(ctx, actorHR, h.now.AddDate(0, 0, 7))
	require.NoError(t, err)

	require.NoError(t, h.svc.Tick(ctx))

	b, err := h.ledger.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), b.Available)
	_, err = h.jobs.Active(ctx)
	assert.NoError(t, err)
}

func TestTickOnDateExpiresEverything(t *testing.T) {
	h := newExpirationHarness()
	ctx := context.Background()

	_, err := h.ledger.Credit(ctx, 1, 100, "grant")
	require.NoError(t, err)
	_, err = h.ledger.Credit(ctx, 2, 30, "grant")
	require.NoError(t, err)
	_, err = h.ledger.Debit(ctx, 2, 10, "purchase")
	require.NoError(t, err)

	category, _, err := h.rewards.UpsertCategory(ctx, "Spot Award")
	require.NoError(t, err)
	reward, err := h.rewards.Create(ctx, rewardInput(category.ID))
	require.NoError(t, err)

	job, err := h.svc.Schedule(ctx, actorHR, h.now)
	require.NoError(t, err)

	require.NoError(t, h.svc.Tick(ctx))

	// Balances forced to zero via a compensating debit; totals untouched.
	b1, err := h.ledger.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), b1.Available)
	assert.Equal(t, int64(100), b1.Total)
	assert.Equal(t, b1.Available, b1.Total-b1.Redeemed)

	b2, err := h.ledger.Balance(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), b2.Available)
	assert.Equal(t, int64(30), b2.Total)

	// The expiry debit carries the fixed description.
	entries, err := h.ledger.Transactions(ctx, 1, true)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, "Reward Points Expired", last.Description)
	assert.False(t, last.IsCredited)

	// Unclaimed coupon invalidated and its sealed code cleared.
	stored := h.rewards.rewards[reward.ID]
	assert.True(t, stored.IsCouponExpired)
	assert.Nil(t, stored.EncryptedCouponCode)

	// Job removed and logged complete.
	_, err = h.jobs.Active(ctx)
	require.Error(t, err)
	log := h.jobs.logs[job.JobID]
	assert.True(t, log.IsCompleted)
	assert.False(t, log.IsCancelled)
}

func TestTickIsIdempotentAcrossRuns(t *testing.T) {
	h := newExpirationHarness()
	ctx := context.Background()

	_, err := h.ledger.Credit(ctx, 1, 100, "grant")
	require.NoError(t, err)
	_, err = h.svc.Schedule(ctx, actorHR, h.now)
	require.NoError(t, err)

	require.NoError(t, h.svc.Tick(ctx))
	require.NoError(t, h.svc.Tick(ctx))

	entries, err := h.ledger.Transactions(ctx, 1, true)
	require.NoError(t, err)
	// grant + one expiry debit, not two.
	assert.Len(t, entries, 2)
}

func TestSweepPastDue(t *testing.T) {
	h := newExpirationHarness()
	ctx := context.Background()

	job, err := h.svc.Schedule(ctx, actorHR, h.now.AddDate(0, 0, 2))
	require.NoError(t, err)

	// Process was down past the date.
	h.now = h.now.AddDate(0, 0, 5)
	_, err = h.ledger.Credit(ctx, 1, 100, "grant")
	require.NoError(t, err)

	require.NoError(t, h.svc.SweepPastDue(ctx))

	// Job removed without firing; balances untouched. The log row stays
	// distinguishable from a user cancellation.
	_, err = h.jobs.Active(ctx)
	require.Error(t, err)
	b, err := h.ledger.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), b.Available)

	log := h.jobs.logs[job.JobID]
	assert.False(t, log.IsActive)
	assert.False(t, log.IsCompleted)
	assert.False(t, log.IsCancelled)
}

func TestSweepLeavesFutureJob(t *testing.T) {
	h := newExpirationHarness()
	ctx := context.Background()

	_, err := h.svc.Schedule(ctx, actorHR, h.now.AddDate(0, 0, 2))
	require.NoError(t, err)

	require.NoError(t, h.svc.SweepPastDue(ctx))

	_, err = h.jobs.Active(ctx)
	assert.NoError(t, err)
}

func rewardInput(categoryID int64) ports.CreateRewardInput {
	return ports.CreateRewardInput{
		EncryptedCouponCode: "deadbeefcafe",
		CategoryID:          categoryID,
		Description:         "Great quarter",
		RewardPoints:        50,
		AddedBy:             50,
	}
}
