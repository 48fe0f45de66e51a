package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"rewardshub-backend/internal/coupon"
	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/ports"
	"rewardshub-backend/internal/sheet"
)

// RewardService issues coupons, redeems them exactly once, and serves the
// HR reward listings.
type RewardService struct {
	Rewards   ports.RewardStore
	Ledger    ports.PointsLedger
	Employees ports.EmployeeDirectory
	Notifier  ports.Notifier
	Loc       *time.Location
}

// UploadRow is one validated row of the HR upload workbook, echoed back to
// the caller with per-field errors when erroneous.
type UploadRow struct {
	Rewardee     string            `json:"rewardee"`
	Category     string            `json:"rewardCategory"`
	Description  string            `json:"description"`
	RewardPoints string            `json:"rewardPoints"`
	AddedBy      string            `json:"addedBy"`
	IsErroneous  bool              `json:"isErroneous"`
	Errors       map[string]string `json:"errors,omitempty"`
}

// ValidateUpload checks every workbook row against the employee directory
// and the points rules. It mutates nothing; erroneous rows are flagged, not
// rejected wholesale.
func (s RewardService) ValidateUpload(ctx context.Context, rows []sheet.RewardRow) ([]UploadRow, error) {
	if len(rows) == 0 {
		return nil, validationFailure("workbook has no reward rows", nil)
	}

	out := make([]UploadRow, 0, len(rows))
	for _, row := range rows {
		result := UploadRow{
			Rewardee:     row.Rewardee,
			Category:     row.Category,
			Description:  row.Description,
			RewardPoints: row.RewardPoints,
			AddedBy:      row.AddedBy,
			Errors:       map[string]string{},
		}

		if _, err := s.resolveEmployee(ctx, row.Rewardee); err != nil {
			result.Errors["rewardee"] = "unknown employee"
		}
		if _, err := s.resolveEmployee(ctx, row.AddedBy); err != nil {
			result.Errors["addedBy"] = "unknown employee"
		}
		if points, err := strconv.ParseInt(row.RewardPoints, 10, 64); err != nil || points <= 0 {
			result.Errors["rewardPoints"] = "must be a positive integer"
		}
		if row.Category == "" {
			result.Errors["rewardCategory"] = "required"
		}
		if row.Description == "" {
			result.Errors["description"] = "required"
		}

		if len(result.Errors) > 0 {
			result.IsErroneous = true
		} else {
			result.Errors = nil
		}
		out = append(out, result)
	}
	return out, nil
}

func (s RewardService) resolveEmployee(ctx context.Context, raw string) (*domain.Employee, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return s.Employees.ByEmployeeID(ctx, id)
}

// IssueInput is one reward to create; the coupon pair is generated here and
// delivered out-of-band, never persisted.
type IssueInput struct {
	RewardeeEmployeeID int64
	Category           string
	Description        string
	RewardPoints       int64
}

// IssuedCoupon pairs a created reward with the one-time plaintext codes.
type IssuedCoupon struct {
	RewardID    int64
	Rewardee    domain.Employee
	Category    string
	Description string
	CouponCode  string
	SecretCode  string
	Points      int64
}

// Issue creates one reward per input. Only the sealed coupon code is stored;
// the plaintext pair goes to the rewardee by email and to HR in a summary
// workbook. A storage failure mid-reward triggers best-effort compensating
// deletes of the partially created rows.
func (s RewardService) Issue(ctx context.Context, actor domain.Actor, inputs []IssueInput) ([]IssuedCoupon, error) {
	if len(inputs) == 0 {
		return nil, validationFailure("no rewards to issue", nil)
	}

	var issued []IssuedCoupon
	for i, in := range inputs {
		field := fmt.Sprintf("rewards[%d]", i)
		if in.RewardPoints <= 0 {
			return issued, validationFailure("invalid rewards",
				map[string]string{field: "rewardPoints must be positive"})
		}
		rewardee, err := s.Employees.ByEmployeeID(ctx, in.RewardeeEmployeeID)
		if errors.Is(err, ports.ErrNotFound) {
			return issued, validationFailure("invalid rewards",
				map[string]string{field: "unknown rewardee"})
		}
		if err != nil {
			return issued, internalFailure("resolve rewardee", err)
		}

		category, created, err := s.Rewards.UpsertCategory(ctx, in.Category)
		if err != nil {
			return issued, internalFailure("upsert reward category", err)
		}

		couponCode, secretCode, err := coupon.GenerateTokens()
		if err != nil {
			s.compensateCategory(ctx, category, created)
			return issued, internalFailure("generate coupon", err)
		}
		sealed, err := coupon.Seal(couponCode, secretCode)
		if err != nil {
			s.compensateCategory(ctx, category, created)
			return issued, internalFailure("seal coupon", err)
		}

		reward, err := s.Rewards.Create(ctx, ports.CreateRewardInput{
			EncryptedCouponCode: sealed,
			CategoryID:          category.ID,
			Description:         in.Description,
			RewardPoints:        in.RewardPoints,
			AddedBy:             actor.EmployeeID,
		})
		if err != nil {
			s.compensateCategory(ctx, category, created)
			return issued, internalFailure("create reward", err)
		}

		issued = append(issued, IssuedCoupon{
			RewardID:    reward.ID,
			Rewardee:    *rewardee,
			Category:    category.Name,
			Description: in.Description,
			CouponCode:  couponCode,
			SecretCode:  secretCode,
			Points:      in.RewardPoints,
		})
	}

	s.notifyIssued(ctx, actor, issued)
	return issued, nil
}

func (s RewardService) compensateCategory(ctx context.Context, category *domain.RewardCategory, created bool) {
	if !created {
		return
	}
	if err := s.Rewards.DeleteCategory(ctx, category.ID); err != nil {
		slog.Error("compensating category delete failed", "categoryId", category.ID, "error", err)
	}
}

func (s RewardService) notifyIssued(ctx context.Context, actor domain.Actor, issued []IssuedCoupon) {
	if s.Notifier == nil || len(issued) == 0 {
		return
	}

	var summary []sheet.SummaryRow
	for _, c := range issued {
		summary = append(summary, sheet.SummaryRow{
			Rewardee:     fmt.Sprintf("%d", c.Rewardee.EmployeeID),
			Category:     c.Category,
			Description:  c.Description,
			RewardPoints: c.Points,
			CouponCode:   c.CouponCode,
			SecretCode:   c.SecretCode,
		})
		if c.Rewardee.Email != "" {
			body := fmt.Sprintf(
				"Hi %s,\n\nYou have been granted a reward of %d points (%s).\n\nCoupon code: %s\nSecret code: %s\n\nRedeem it on the rewards portal.\n",
				c.Rewardee.Name, c.Points, c.Category, c.CouponCode, c.SecretCode)
			sendAsync(s.Notifier, c.Rewardee.Email, "You received a reward", body)
		}
	}

	hr, err := s.Employees.ByEmployeeID(ctx, actor.EmployeeID)
	if err != nil || hr.Email == "" {
		return
	}
	workbook, err := sheet.BuildSummary(summary)
	if err != nil {
		slog.Error("summary workbook build failed", "error", err)
		return
	}
	sendAsync(s.Notifier, hr.Email,
		fmt.Sprintf("%d reward coupons issued", len(issued)),
		fmt.Sprintf("Hi %s,\n\n%d coupons were issued. The summary is attached.\n", hr.Name, len(issued)),
		ports.Attachment{Filename: "issued-coupons.xlsx", Content: workbook})
}

// Redeem claims a coupon exactly once and credits the redeemer. Malformed
// codes, unknown coupons and already-claimed coupons all collapse to the
// same failure so the response leaks no oracle.
func (s RewardService) Redeem(ctx context.Context, couponCode, secretCode string, employeeID int64) error {
	redemptionFailed := failure(KindAlreadyClaimed, "coupon could not be redeemed")

	sealed, err := coupon.Seal(couponCode, secretCode)
	if err != nil {
		return redemptionFailed
	}
	reward, err := s.Rewards.FindByEncryptedCode(ctx, sealed)
	if errors.Is(err, ports.ErrNotFound) {
		return redemptionFailed
	}
	if err != nil {
		return internalFailure("find reward", err)
	}

	claimed, err := s.Rewards.Claim(ctx, reward.ID, employeeID)
	if err != nil {
		return internalFailure("claim reward", err)
	}
	if !claimed {
		return redemptionFailed
	}

	tx, err := s.Ledger.Credit(ctx, employeeID, reward.RewardPoints, reward.Description)
	if err != nil {
		// Revert the claim so the coupon stays redeemable; failure here
		// is logged, not hidden.
		if revertErr := s.Rewards.Unclaim(ctx, reward.ID); revertErr != nil {
			slog.Error("claim revert failed", "rewardId", reward.ID, "error", revertErr)
		}
		return internalFailure("credit reward points", err)
	}
	if err := s.Rewards.SetTransaction(ctx, reward.ID, tx.TransactionID); err != nil {
		slog.Error("attach transaction to reward failed", "rewardId", reward.ID, "error", err)
	}
	return nil
}

// RewardView is a claimed reward shaped for presentation.
type RewardView struct {
	Category     string `json:"rewardCategory"`
	Description  string `json:"description"`
	RewardPoints int64  `json:"rewardPoints"`
	Date         string `json:"date"`
}

func (s RewardService) RewardsForEmployee(ctx context.Context, employeeID int64, sortAsc bool) ([]RewardView, error) {
	rewards, err := s.Rewards.ClaimedForEmployee(ctx, employeeID, sortAsc)
	if err != nil {
		return nil, internalFailure("fetch rewards", err)
	}
	return s.views(rewards), nil
}

// ClaimedFilters is the HR listing filter set, carried as raw request
// values so unknown references surface as field-level errors.
type ClaimedFilters struct {
	Rewardee  string
	AddedBy   string
	Category  string
	StartDate string
	EndDate   string
}

// ClaimedRewards lists claimed rewards per filters. Unknown rewardee,
// rewarder or category values are reported per field, not as a blanket
// failure.
func (s RewardService) ClaimedRewards(ctx context.Context, f ClaimedFilters, sortAsc bool) ([]RewardView, error) {
	var filters ports.RewardFilters
	fields := map[string]string{}

	if f.Rewardee != "" {
		e, err := s.resolveEmployee(ctx, f.Rewardee)
		if err != nil {
			fields["rewardee"] = "unknown employee"
		} else {
			filters.RewardeeEmployeeID = &e.EmployeeID
		}
	}
	if f.AddedBy != "" {
		e, err := s.resolveEmployee(ctx, f.AddedBy)
		if err != nil {
			fields["addedBy"] = "unknown employee"
		} else {
			filters.AddedBy = &e.EmployeeID
		}
	}
	if f.Category != "" {
		id, ok, err := s.categoryID(ctx, f.Category)
		if err != nil {
			return nil, internalFailure("fetch categories", err)
		}
		if !ok {
			fields["rewardCategory"] = "unknown category"
		} else {
			filters.CategoryID = &id
		}
	}
	if f.StartDate != "" {
		t, err := s.parseDate(f.StartDate)
		if err != nil {
			fields["startDate"] = "invalid date"
		} else {
			filters.StartDate = &t
		}
	}
	if f.EndDate != "" {
		t, err := s.parseDate(f.EndDate)
		if err != nil {
			fields["endDate"] = "invalid date"
		} else {
			end := t.Add(24*time.Hour - time.Nanosecond)
			filters.EndDate = &end
		}
	}
	if len(fields) > 0 {
		return nil, validationFailure("invalid filters", fields)
	}

	rewards, err := s.Rewards.Claimed(ctx, filters, sortAsc)
	if err != nil {
		return nil, internalFailure("fetch rewards", err)
	}
	return s.views(rewards), nil
}

func (s RewardService) categoryID(ctx context.Context, name string) (int64, bool, error) {
	categories, err := s.Rewards.Categories(ctx)
	if err != nil {
		return 0, false, err
	}
	for _, c := range categories {
		if c.Name == name {
			return c.ID, true, nil
		}
	}
	return 0, false, nil
}

func (s RewardService) parseDate(raw string) (time.Time, error) {
	loc := s.Loc
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(domain.DateLayout, raw, loc)
}

func (s RewardService) views(rewards []domain.Reward) []RewardView {
	out := make([]RewardView, 0, len(rewards))
	for _, r := range rewards {
		out = append(out, RewardView{
			Category:     r.CategoryName,
			Description:  r.Description,
			RewardPoints: r.RewardPoints,
			Date:         r.CreatedAt.Format(domain.DateLayout),
		})
	}
	return out
}

func (s RewardService) Categories(ctx context.Context) ([]domain.RewardCategory, error) {
	categories, err := s.Rewards.Categories(ctx)
	if err != nil {
		return nil, internalFailure("fetch categories", err)
	}
	return categories, nil
}
