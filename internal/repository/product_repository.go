package repository

import (
	"context"
	"errors"

	"rewardshub-backend/internal/db"
	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/ports"

	"github.com/jackc/pgx/v5"
)

type ProductRepository struct {
	DB *db.Postgres
}

func (r ProductRepository) ByID(ctx context.Context, productID int64) (*domain.Product, error) {
	var p domain.Product
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, product_id, title, reward_points, is_customisable, image_url, created_at
		FROM products WHERE product_id = $1
	`, productID).Scan(&p.ID, &p.ProductID, &p.Title, &p.RewardPoints, &p.IsCustomisable, &p.ImageURL, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, product_id, title, reward_points, is_customisable, image_url, created_at
		FROM products ORDER BY product_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.ProductID, &p.Title, &p.RewardPoints,
			&p.IsCustomisable, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r ProductRepository) Create(ctx context.Context, title string, rewardPoints int64, isCustomisable bool, imageURL string) (*domain.Product, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	productID, err := nextSeq(ctx, tx, ports.SeqProducts)
	if err != nil {
		return nil, err
	}

	p := domain.Product{
		ProductID:      productID,
		Title:          title,
		RewardPoints:   rewardPoints,
		IsCustomisable: isCustomisable,
		ImageURL:       imageURL,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO products (product_id, title, reward_points, is_customisable, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, productID, title, rewardPoints, isCustomisable, imageURL).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r ProductRepository) Sizes(ctx context.Context) ([]string, error) {
	return r.names(ctx, `SELECT name FROM product_sizes ORDER BY name`)
}

func (r ProductRepository) Colors(ctx context.Context) ([]string, error) {
	return r.names(ctx, `SELECT name FROM product_colors ORDER BY name`)
}

func (r ProductRepository) names(ctx context.Context, sql string) ([]string, error) {
	rows, err := r.DB.Pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
