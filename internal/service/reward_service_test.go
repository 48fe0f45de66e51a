package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/sheet"
)

type rewardHarness struct {
	svc       RewardService
	rewards   *fakeRewards
	ledger    *fakeLedger
	employees *fakeEmployees
	notifier  *fakeNotifier
}

func newRewardHarness() *rewardHarness {
	rewards := newFakeRewards()
	ledger := newFakeLedger()
	employees := newFakeEmployees()
	notifier := &fakeNotifier{}

	employees.add(domain.Employee{EmployeeID: 1, Name: "Asha", Email: "asha@example.com", Role: domain.RoleUser})
	employees.add(domain.Employee{EmployeeID: 2, Name: "Ravi", Email: "ravi@example.com", Role: domain.RoleUser})
	employees.add(domain.Employee{EmployeeID: 50, Name: "Priya", Email: "priya@example.com", Role: domain.RoleHR})

	return &rewardHarness{
		svc: RewardService{
			Rewards:   rewards,
			Ledger:    ledger,
			Employees: employees,
			Notifier:  notifier,
		},
		rewards:   rewards,
		ledger:    ledger,
		employees: employees,
		notifier:  notifier,
	}
}

var actorPriya = domain.Actor{EmployeeID: 50, Name: "Priya"}

func TestIssueAndRedeem(t *testing.T) {
	h := newRewardHarness()
	ctx := context.Background()

	issued, err := h.svc.Issue(ctx, actorPriya, []IssueInput{
		{RewardeeEmployeeID: 1, Category: "Spot Award", Description: "Great quarter", RewardPoints: 50},
	})
	require.NoError(t, err)
	require.Len(t, issued, 1)
	assert.NotEmpty(t, issued[0].CouponCode)
	assert.NotEmpty(t, issued[0].SecretCode)

	// The stored reward carries only the sealed code, unassigned.
	stored, err := h.rewards.FindByEncryptedCode(ctx, mustSealed(t, h, issued[0]))
	require.NoError(t, err)
	assert.Nil(t, stored.RewardeeEmployeeID)
	assert.False(t, stored.IsCouponExpired)

	err = h.svc.Redeem(ctx, issued[0].CouponCode, issued[0].SecretCode, 1)
	require.NoError(t, err)

	b, err := h.ledger.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), b.Total)
	assert.Equal(t, int64(50), b.Available)

	claimed, err := h.rewards.ClaimedForEmployee(ctx, 1, true)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.True(t, claimed[0].IsCouponExpired)
	assert.NotNil(t, claimed[0].TransactionID)
}

func mustSealed(t *testing.T, h *rewardHarness, c IssuedCoupon) string {
	t.Helper()
	r := h.rewards.rewards[c.RewardID]
	require.NotNil(t, r.EncryptedCouponCode)
	return *r.EncryptedCouponCode
}

func TestRedeemIsIdempotent(t *testing.T) {
	h := newRewardHarness()
	ctx := context.Background()

	issued, err := h.svc.Issue(ctx, actorPriya, []IssueInput{
		{RewardeeEmployeeID: 1, Category: "Spot Award", Description: "Great quarter", RewardPoints: 50},
	})
	require.NoError(t, err)

	require.NoError(t, h.svc.Redeem(ctx, issued[0].CouponCode, issued[0].SecretCode, 1))

	err = h.svc.Redeem(ctx, issued[0].CouponCode, issued[0].SecretCode, 1)
	require.Error(t, err)
	assert.Equal(t, KindAlreadyClaimed, KindOf(err))

	// Credited exactly once.
	b, err := h.ledger.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), b.Total)
}

func TestRedeemUnknownCodesFail(t *testing.T) {
	h := newRewardHarness()
	err := h.svc.Redeem(context.Background(), "0000000000000000", "1111111111111111", 1)
	require.Error(t, err)
	assert.Equal(t, KindAlreadyClaimed, KindOf(err))
}

func TestRedeemRevertsClaimOnCreditFailure(t *testing.T) {
	h := newRewardHarness()
	ctx := context.Background()

	issued, err := h.svc.Issue(ctx, actorPriya, []IssueInput{
		{RewardeeEmployeeID: 1, Category: "Spot Award", Description: "Great quarter", RewardPoints: 50},
	})
	require.NoError(t, err)

	h.ledger.creditErr = errors.New("storage down")
	err = h.svc.Redeem(ctx, issued[0].CouponCode, issued[0].SecretCode, 1)
	require.Error(t, err)

	// The claim was reverted, so a later retry still succeeds.
	h.ledger.creditErr = nil
	require.NoError(t, h.svc.Redeem(ctx, issued[0].CouponCode, issued[0].SecretCode, 1))
}

func TestIssueValidation(t *testing.T) {
	h := newRewardHarness()
	ctx := context.Background()

	_, err := h.svc.Issue(ctx, actorPriya, nil)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = h.svc.Issue(ctx, actorPriya, []IssueInput{
		{RewardeeEmployeeID: 99, Category: "Spot Award", Description: "x", RewardPoints: 10},
	})
	require.Error(t, err)
	assert.Contains(t, FieldsOf(err), "rewards[0]")

	_, err = h.svc.Issue(ctx, actorPriya, []IssueInput{
		{RewardeeEmployeeID: 1, Category: "Spot Award", Description: "x", RewardPoints: 0},
	})
	require.Error(t, err)
	assert.Contains(t, FieldsOf(err), "rewards[0]")
}

func TestValidateUpload(t *testing.T) {
	h := newRewardHarness()
	ctx := context.Background()

	rows := []sheet.RewardRow{
		{Rewardee: "1", Category: "Spot Award", Description: "Great quarter", RewardPoints: "500", AddedBy: "50"},
		{Rewardee: "999", Category: "", Description: "", RewardPoints: "-5", AddedBy: "abc"},
	}

	out, err := h.svc.ValidateUpload(ctx, rows)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.False(t, out[0].IsErroneous)
	assert.Nil(t, out[0].Errors)

	assert.True(t, out[1].IsErroneous)
	assert.Contains(t, out[1].Errors, "rewardee")
	assert.Contains(t, out[1].Errors, "addedBy")
	assert.Contains(t, out[1].Errors, "rewardPoints")
	assert.Contains(t, out[1].Errors, "rewardCategory")
	assert.Contains(t, out[1].Errors, "description")
}

func TestValidateUploadEmpty(t *testing.T) {
	h := newRewardHarness()
	_, err := h.svc.ValidateUpload(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestClaimedRewardsFilters(t *testing.T) {
	h := newRewardHarness()
	ctx := context.Background()

	issued, err := h.svc.Issue(ctx, actorPriya, []IssueInput{
		{RewardeeEmployeeID: 1, Category: "Spot Award", Description: "Great quarter", RewardPoints: 50},
		{RewardeeEmployeeID: 2, Category: "Peer Bonus", Description: "Helped onboarding", RewardPoints: 25},
	})
	require.NoError(t, err)
	require.NoError(t, h.svc.Redeem(ctx, issued[0].CouponCode, issued[0].SecretCode, 1))
	require.NoError(t, h.svc.Redeem(ctx, issued[1].CouponCode, issued[1].SecretCode, 2))

	got, err := h.svc.ClaimedRewards(ctx, ClaimedFilters{Rewardee: "1"}, true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Spot Award", got[0].Category)

	got, err = h.svc.ClaimedRewards(ctx, ClaimedFilters{Category: "Peer Bonus"}, true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(25), got[0].RewardPoints)
}

func TestClaimedRewardsUnknownFilterFields(t *testing.T) {
	h := newRewardHarness()
	_, err := h.svc.ClaimedRewards(context.Background(), ClaimedFilters{
		Rewardee: "999",
		AddedBy:  "888",
		Category: "Nope",
	}, true)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	fields := FieldsOf(err)
	assert.Contains(t, fields, "rewardee")
	assert.Contains(t, fields, "addedBy")
	assert.Contains(t, fields, "rewardCategory")
}
