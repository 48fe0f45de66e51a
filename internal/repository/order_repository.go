package repository

import (
	"context"
	"fmt"
	"strings"

	"rewardshub-backend/internal/db"
	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/ports"

	"github.com/jackc/pgx/v5"
)

type OrderRepository struct {
	DB *db.Postgres
}

func (r OrderRepository) Create(ctx context.Context, in ports.CreateOrderInput) (*domain.Order, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	o := domain.Order{
		OrderID:       in.OrderID,
		EmployeeID:    in.EmployeeID,
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		Customisation: in.Customisation,
		TransactionID: in.TransactionID,
		CurrentStatus: in.Initial.Status,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (order_id, employee_id, product_id, quantity, size, color, transaction_id, current_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, in.OrderID, in.EmployeeID, in.ProductID, in.Quantity,
		in.Customisation.Size, in.Customisation.Color,
		in.TransactionID, in.Initial.Status).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := insertHistory(ctx, tx, in.OrderID, in.Initial); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r OrderRepository) Get(ctx context.Context, orderID int64) (*ports.OrderDetails, error) {
	details, err := r.list(ctx, `WHERE o.order_id = $1`, []any{orderID}, "ASC")
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, ports.ErrNotFound
	}
	return &details[0], nil
}

// AppendStatus moves the order forward and records who moved it, in one
// database transaction. The from guard makes the transition a compare-and-set:
// a concurrent transition that already moved the order leaves zero rows here.
func (r OrderRepository) AppendStatus(ctx context.Context, orderID int64, from domain.OrderStatus, entry domain.OrderHistoryEntry) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE orders SET current_status = $2 WHERE order_id = $1 AND current_status = $3`,
		orderID, entry.Status, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	if err := insertHistory(ctx, tx, orderID, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r OrderRepository) ForEmployee(ctx context.Context, employeeID int64, transactionID *int64) ([]ports.OrderDetails, error) {
	where := `WHERE o.employee_id = $1`
	args := []any{employeeID}
	if transactionID != nil {
		where += ` AND o.transaction_id = $2`
		args = append(args, *transactionID)
	}
	return r.list(ctx, where, args, "ASC")
}

func (r OrderRepository) Matching(ctx context.Context, f ports.OrderFilters) ([]ports.OrderDetails, error) {
	var conds []string
	var args []any
	if f.EmployeeID != nil {
		args = append(args, *f.EmployeeID)
		conds = append(conds, fmt.Sprintf("o.employee_id = $%d", len(args)))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		conds = append(conds, fmt.Sprintf("o.current_status = ANY($%d)", len(args)))
	}
	if len(f.Locations) > 0 {
		args = append(args, f.Locations)
		conds = append(conds, fmt.Sprintf("e.location = ANY($%d)", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	return r.list(ctx, where, args, "DESC")
}

func (r OrderRepository) list(ctx context.Context, where string, args []any, order string) ([]ports.OrderDetails, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT o.id, o.order_id, o.employee_id, o.product_id, o.quantity, o.size, o.color,
		       o.transaction_id, o.current_status, o.created_at,
		       p.id, p.product_id, p.title, p.reward_points, p.is_customisable, p.image_url, p.created_at,
		       e.id, e.employee_id, e.name, e.email, e.location, e.role, e.created_at
		FROM orders o
		JOIN products p ON p.product_id = o.product_id
		JOIN employees e ON e.employee_id = o.employee_id
		`+where+`
		ORDER BY o.created_at `+order+`, o.id `+order, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.OrderDetails
	var ids []int64
	for rows.Next() {
		var d ports.OrderDetails
		var role string
		if err := rows.Scan(
			&d.Order.ID, &d.Order.OrderID, &d.Order.EmployeeID, &d.Order.ProductID,
			&d.Order.Quantity, &d.Order.Customisation.Size, &d.Order.Customisation.Color,
			&d.Order.TransactionID, &d.Order.CurrentStatus, &d.Order.CreatedAt,
			&d.Product.ID, &d.Product.ProductID, &d.Product.Title, &d.Product.RewardPoints,
			&d.Product.IsCustomisable, &d.Product.ImageURL, &d.Product.CreatedAt,
			&d.Employee.ID, &d.Employee.EmployeeID, &d.Employee.Name, &d.Employee.Email,
			&d.Employee.Location, &role, &d.Employee.CreatedAt,
		); err != nil {
			return nil, err
		}
		d.Employee.Role = domain.EmployeeRole(role)
		ids = append(ids, d.Order.OrderID)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	historyRows, err := r.DB.Pool.Query(ctx, `
		SELECT order_id, actor_id, actor_name, status, reason, changed_at
		FROM order_history
		WHERE order_id = ANY($1)
		ORDER BY id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer historyRows.Close()

	byOrder := make(map[int64][]domain.OrderHistoryEntry)
	for historyRows.Next() {
		var orderID int64
		var h domain.OrderHistoryEntry
		if err := historyRows.Scan(&orderID, &h.ActorID, &h.ActorName, &h.Status, &h.Reason, &h.ChangedAt); err != nil {
			return nil, err
		}
		byOrder[orderID] = append(byOrder[orderID], h)
	}
	if err := historyRows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].History = byOrder[out[i].Order.OrderID]
	}
	return out, nil
}

func (r OrderRepository) StatusCounts(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	rows, err := r.DB.Pool.Query(ctx,
		`SELECT current_status, COUNT(*) FROM orders GROUP BY current_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.OrderStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.OrderStatus(status)] = n
	}
	return counts, rows.Err()
}

func (r OrderRepository) HasDeliveredOrder(ctx context.Context, employeeID, productID int64) (bool, error) {
	var exists bool
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE employee_id = $1 AND product_id = $2 AND current_status = $3
		)
	`, employeeID, productID, domain.StatusDelivered).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, orderID int64, entry domain.OrderHistoryEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO order_history (order_id, actor_id, actor_name, status, reason, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, orderID, entry.ActorID, entry.ActorName, entry.Status, entry.Reason, entry.ChangedAt)
	return err
}
