package repository

import (
	"context"
	"errors"

	"rewardshub-backend/internal/db"
	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/ports"

	"github.com/jackc/pgx/v5"
)

type EmployeeRepository struct {
	DB *db.Postgres
}

const employeeColumns = `id, employee_id, name, email, location, role, password_hash, created_at`

func (r EmployeeRepository) ByEmployeeID(ctx context.Context, employeeID int64) (*domain.Employee, error) {
	return r.one(ctx, `WHERE employee_id = $1`, employeeID)
}

func (r EmployeeRepository) ByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	return r.one(ctx, `WHERE email = $1`, email)
}

func (r EmployeeRepository) one(ctx context.Context, where string, arg any) (*domain.Employee, error) {
	var e domain.Employee
	var role string
	err := r.DB.Pool.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees `+where, arg).
		Scan(&e.ID, &e.EmployeeID, &e.Name, &e.Email, &e.Location, &role, &e.PasswordHash, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Role = domain.EmployeeRole(role)
	return &e, nil
}

func (r EmployeeRepository) Create(ctx context.Context, e domain.Employee) (*domain.Employee, error) {
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO employees (employee_id, name, email, location, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, e.EmployeeID, e.Name, e.Email, e.Location, string(e.Role), e.PasswordHash).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ports.ErrDuplicate
		}
		return nil, err
	}
	return &e, nil
}

func (r EmployeeRepository) All(ctx context.Context) ([]domain.Employee, error) {
	rows, err := r.DB.Pool.Query(ctx,
		`SELECT `+employeeColumns+` FROM employees ORDER BY employee_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Employee
	for rows.Next() {
		var e domain.Employee
		var role string
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.Name, &e.Email, &e.Location,
			&role, &e.PasswordHash, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Role = domain.EmployeeRole(role)
		out = append(out, e)
	}
	return out, rows.Err()
}
