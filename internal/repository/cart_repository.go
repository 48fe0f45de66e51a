package repository

import (
	"context"

	"rewardshub-backend/internal/db"
	"rewardshub-backend/internal/domain"
)

type CartRepository struct {
	DB *db.Postgres
}

func (r CartRepository) Lines(ctx context.Context, employeeID int64) ([]domain.CartLine, error) {
	return r.query(ctx,
		`WHERE employee_id = $1`, employeeID)
}

func (r CartRepository) LinesFor(ctx context.Context, employeeID, productID int64) ([]domain.CartLine, error) {
	return r.query(ctx,
		`WHERE employee_id = $1 AND product_id = $2`, employeeID, productID)
}

func (r CartRepository) query(ctx context.Context, where string, args ...any) ([]domain.CartLine, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, employee_id, product_id, quantity, size, color, created_at
		FROM cart_items `+where+` ORDER BY id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ID, &l.EmployeeID, &l.ProductID, &l.Quantity,
			&l.Customisation.Size, &l.Customisation.Color, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r CartRepository) Insert(ctx context.Context, line domain.CartLine) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO cart_items (employee_id, product_id, quantity, size, color)
		VALUES ($1, $2, $3, $4, $5)
	`, line.EmployeeID, line.ProductID, line.Quantity,
		line.Customisation.Size, line.Customisation.Color)
	return err
}

func (r CartRepository) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	_, err := r.DB.Pool.Exec(ctx,
		`UPDATE cart_items SET quantity = $2 WHERE id = $1`, id, quantity)
	return err
}

func (r CartRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.DB.Pool.Exec(ctx,
		`DELETE FROM cart_items WHERE id = $1`, id)
	return err
}

func (r CartRepository) Clear(ctx context.Context, employeeID int64) error {
	_, err := r.DB.Pool.Exec(ctx,
		`DELETE FROM cart_items WHERE employee_id = $1`, employeeID)
	return err
}
