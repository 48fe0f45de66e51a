package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rewardshub-backend/internal/db"
	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/ports"

	"github.com/jackc/pgx/v5"
)

type RewardRepository struct {
	DB *db.Postgres
}

const rewardColumns = `
	r.id, r.encrypted_coupon_code, r.is_coupon_expired, r.reward_category_id, c.name,
	r.description, r.reward_points, r.added_by, r.rewardee_employee_id, r.transaction_id, r.created_at`

func (r RewardRepository) Create(ctx context.Context, in ports.CreateRewardInput) (*domain.Reward, error) {
	reward := domain.Reward{
		EncryptedCouponCode: &in.EncryptedCouponCode,
		CategoryID:          in.CategoryID,
		Description:         in.Description,
		RewardPoints:        in.RewardPoints,
		AddedBy:             in.AddedBy,
	}
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO rewards (encrypted_coupon_code, reward_category_id, description, reward_points, added_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, in.EncryptedCouponCode, in.CategoryID, in.Description, in.RewardPoints, in.AddedBy).
		Scan(&reward.ID, &reward.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ports.ErrDuplicate
		}
		return nil, err
	}
	return &reward, nil
}

func (r RewardRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.Pool.Exec(ctx, `DELETE FROM rewards WHERE id = $1`, id)
	return err
}

func (r RewardRepository) FindByEncryptedCode(ctx context.Context, code string) (*domain.Reward, error) {
	rewards, err := r.query(ctx, `WHERE r.encrypted_coupon_code = $1`, []any{code}, "")
	if err != nil {
		return nil, err
	}
	if len(rewards) == 0 {
		return nil, ports.ErrNotFound
	}
	return &rewards[0], nil
}

// Claim is the one-time redemption gate. The WHERE clause only matches a
// live, unclaimed coupon, so concurrent redeemers race on a single
// conditional update and at most one wins.
func (r RewardRepository) Claim(ctx context.Context, rewardID, employeeID int64) (bool, error) {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE rewards
		SET is_coupon_expired = TRUE, rewardee_employee_id = $2
		WHERE id = $1 AND is_coupon_expired = FALSE
	`, rewardID, employeeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r RewardRepository) SetTransaction(ctx context.Context, rewardID, transactionID int64) error {
	_, err := r.DB.Pool.Exec(ctx,
		`UPDATE rewards SET transaction_id = $2 WHERE id = $1`, rewardID, transactionID)
	return err
}

func (r RewardRepository) Unclaim(ctx context.Context, rewardID int64) error {
	_, err := r.DB.Pool.Exec(ctx, `
		UPDATE rewards
		SET is_coupon_expired = FALSE, rewardee_employee_id = NULL, transaction_id = NULL
		WHERE id = $1
	`, rewardID)
	return err
}

func (r RewardRepository) ExpireAll(ctx context.Context) (int64, error) {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE rewards
		SET is_coupon_expired = TRUE, encrypted_coupon_code = NULL
		WHERE is_coupon_expired = FALSE
	`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r RewardRepository) ClaimedForEmployee(ctx context.Context, employeeID int64, sortAsc bool) ([]domain.Reward, error) {
	return r.query(ctx, `WHERE r.rewardee_employee_id = $1`, []any{employeeID}, sortOrder(sortAsc))
}

func (r RewardRepository) Claimed(ctx context.Context, f ports.RewardFilters, sortAsc bool) ([]domain.Reward, error) {
	conds := []string{"r.rewardee_employee_id IS NOT NULL"}
	var args []any
	if f.RewardeeEmployeeID != nil {
		args = append(args, *f.RewardeeEmployeeID)
		conds = append(conds, fmt.Sprintf("r.rewardee_employee_id = $%d", len(args)))
	}
	if f.AddedBy != nil {
		args = append(args, *f.AddedBy)
		conds = append(conds, fmt.Sprintf("r.added_by = $%d", len(args)))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		conds = append(conds, fmt.Sprintf("r.reward_category_id = $%d", len(args)))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		conds = append(conds, fmt.Sprintf("r.created_at >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		conds = append(conds, fmt.Sprintf("r.created_at <= $%d", len(args)))
	}
	return r.query(ctx, "WHERE "+strings.Join(conds, " AND "), args, sortOrder(sortAsc))
}

func sortOrder(asc bool) string {
	if asc {
		return "ASC"
	}
	return "DESC"
}

func (r RewardRepository) query(ctx context.Context, where string, args []any, order string) ([]domain.Reward, error) {
	sql := `
		SELECT ` + rewardColumns + `
		FROM rewards r
		JOIN reward_categories c ON c.id = r.reward_category_id
		` + where
	if order != "" {
		sql += ` ORDER BY r.created_at ` + order + `, r.id ` + order
	}
	rows, err := r.DB.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reward
	for rows.Next() {
		var reward domain.Reward
		if err := rows.Scan(&reward.ID, &reward.EncryptedCouponCode, &reward.IsCouponExpired,
			&reward.CategoryID, &reward.CategoryName, &reward.Description, &reward.RewardPoints,
			&reward.AddedBy, &reward.RewardeeEmployeeID, &reward.TransactionID, &reward.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, reward)
	}
	return out, rows.Err()
}

func (r RewardRepository) UpsertCategory(ctx context.Context, name string) (*domain.RewardCategory, bool, error) {
	var c domain.RewardCategory
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO reward_categories (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name
	`, name).Scan(&c.ID, &c.Name)
	if err == nil {
		return &c, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	err = r.DB.Pool.QueryRow(ctx,
		`SELECT id, name FROM reward_categories WHERE name = $1`, name).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, false, err
	}
	return &c, false, nil
}

func (r RewardRepository) DeleteCategory(ctx context.Context, id int64) error {
	_, err := r.DB.Pool.Exec(ctx, `DELETE FROM reward_categories WHERE id = $1`, id)
	return err
}

func (r RewardRepository) Categories(ctx context.Context) ([]domain.RewardCategory, error) {
	rows, err := r.DB.Pool.Query(ctx,
		`SELECT id, name FROM reward_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RewardCategory
	for rows.Next() {
		var c domain.RewardCategory
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
