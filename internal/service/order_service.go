package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/ports"
)

// OrderService drives the order lifecycle: placement (debit), status
// transitions, and the refunds that terminal negative transitions trigger.
type OrderService struct {
	Orders    ports.OrderStore
	Ledger    ports.PointsLedger
	Catalog   ports.ProductCatalog
	Cart      ports.CartStore
	Employees ports.EmployeeDirectory
	Sequences ports.SequenceAllocator
	Notifier  ports.Notifier
	Loc       *time.Location
	Now       func() time.Time
}

func (s OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s OrderService) timestamp() string {
	t := s.now()
	if s.Loc != nil {
		t = t.In(s.Loc)
	}
	return t.Format(domain.DateLayout)
}

// OrderItemInput is one requested order line, as validated input from the
// transport layer.
type OrderItemInput struct {
	ProductID     int64
	Quantity      int
	Customisation domain.Customisation
}

// PlaceOrder validates every requested line against the catalog and the
// employee's balance, then creates one order per line, debiting the wallet
// per line. Validation happens entirely before the first mutation; a line
// failure after some orders were placed leaves the earlier orders standing
// and refunds the failed line's debit best-effort.
func (s OrderService) PlaceOrder(ctx context.Context, actor domain.Actor, items []OrderItemInput) ([]domain.Order, error) {
	if len(items) == 0 {
		return nil, validationFailure("no items to order", nil)
	}

	products, totalCost, err := s.validateItems(ctx, items)
	if err != nil {
		return nil, err
	}

	balance, err := s.Ledger.Balance(ctx, actor.EmployeeID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, failure(KindInsufficientBalance, "insufficient points balance")
	}
	if err != nil {
		return nil, internalFailure("fetch balance", err)
	}
	if balance.Available < totalCost {
		return nil, failure(KindInsufficientBalance, "insufficient points balance")
	}

	var placed []domain.Order
	for i, item := range items {
		product := products[i]
		order, err := s.placeLine(ctx, actor, item, product)
		if err != nil {
			return placed, err
		}
		placed = append(placed, *order)
	}

	if err := s.Cart.Clear(ctx, actor.EmployeeID); err != nil {
		slog.Error("cart clear after order placement failed", "employeeId", actor.EmployeeID, "error", err)
	}
	s.notifyPlaced(ctx, actor, placed, products)
	return placed, nil
}

func (s OrderService) validateItems(ctx context.Context, items []OrderItemInput) ([]*domain.Product, int64, error) {
	sizes, err := s.Catalog.Sizes(ctx)
	if err != nil {
		return nil, 0, internalFailure("fetch sizes", err)
	}
	colors, err := s.Catalog.Colors(ctx)
	if err != nil {
		return nil, 0, internalFailure("fetch colors", err)
	}

	products := make([]*domain.Product, len(items))
	var totalCost int64
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		if item.Quantity <= 0 {
			return nil, 0, validationFailure("invalid order items",
				map[string]string{field: "quantity must be positive"})
		}
		product, err := s.Catalog.ByID(ctx, item.ProductID)
		if errors.Is(err, ports.ErrNotFound) {
			return nil, 0, validationFailure("invalid order items",
				map[string]string{field: "product does not exist"})
		}
		if err != nil {
			return nil, 0, internalFailure("fetch product", err)
		}
		if !item.Customisation.IsZero() {
			if !product.IsCustomisable {
				return nil, 0, validationFailure("invalid order items",
					map[string]string{field: "product is not customisable"})
			}
			if item.Customisation.Size != "" && !containsFold(sizes, item.Customisation.Size) {
				return nil, 0, validationFailure("invalid order items",
					map[string]string{field: "unknown size"})
			}
			if item.Customisation.Color != "" && !containsFold(colors, item.Customisation.Color) {
				return nil, 0, validationFailure("invalid order items",
					map[string]string{field: "unknown color"})
			}
		}
		products[i] = product
		totalCost += product.RewardPoints * int64(item.Quantity)
	}
	return products, totalCost, nil
}

func (s OrderService) placeLine(ctx context.Context, actor domain.Actor, item OrderItemInput, product *domain.Product) (*domain.Order, error) {
	orderID, err := s.Sequences.Next(ctx, ports.SeqOrders)
	if err != nil {
		return nil, internalFailure("allocate order id", err)
	}

	amount := product.RewardPoints * int64(item.Quantity)
	description := fmt.Sprintf("Purchase Order No %d - %s", orderID, product.Title)
	tx, err := s.Ledger.Debit(ctx, actor.EmployeeID, amount, description)
	if errors.Is(err, ports.ErrInsufficientBalance) || errors.Is(err, ports.ErrNotFound) {
		return nil, failure(KindInsufficientBalance, "insufficient points balance")
	}
	if err != nil {
		return nil, internalFailure("debit points", err)
	}

	order, err := s.Orders.Create(ctx, ports.CreateOrderInput{
		OrderID:       orderID,
		EmployeeID:    actor.EmployeeID,
		ProductID:     product.ProductID,
		Quantity:      item.Quantity,
		Customisation: item.Customisation,
		TransactionID: tx.TransactionID,
		Initial: domain.OrderHistoryEntry{
			ActorID:   actor.EmployeeID,
			ActorName: actor.Name,
			Status:    domain.StatusSubmitted,
			ChangedAt: s.timestamp(),
		},
	})
	if err != nil {
		// Compensate the debit; a failure here leaves an orphaned ledger
		// entry, which is logged rather than hidden.
		refundDesc := fmt.Sprintf("Refund Order No: %d - %s", orderID, product.Title)
		if _, refundErr := s.Ledger.Refund(ctx, actor.EmployeeID, amount, refundDesc); refundErr != nil {
			slog.Error("compensating refund failed", "orderId", orderID, "error", refundErr)
		}
		return nil, internalFailure("create order", err)
	}
	return order, nil
}

// ChangeStatus applies one transition of the order state machine. Terminal
// negative transitions (REJECTED, CANCELLED) refund the order's points.
// Lookup failures collapse into one generic signal.
func (s OrderService) ChangeStatus(ctx context.Context, actor domain.Actor, orderID int64, target domain.OrderStatus, reason *string) error {
	details, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return failure(KindNotFound, "update not successful")
	}

	if !domain.CanTransition(details.Order.CurrentStatus, target) {
		return failure(KindInvalidTransition,
			fmt.Sprintf("cannot move order from %s to %s", details.Order.CurrentStatus, target))
	}

	entry := domain.OrderHistoryEntry{
		ActorID:   actor.EmployeeID,
		ActorName: actor.Name,
		Status:    target,
		Reason:    reason,
		ChangedAt: s.timestamp(),
	}
	if err := s.Orders.AppendStatus(ctx, orderID, details.Order.CurrentStatus, entry); err != nil {
		return failure(KindNotFound, "update not successful")
	}

	if domain.IsRefundable(target) {
		amount := details.Product.RewardPoints * int64(details.Order.Quantity)
		description := fmt.Sprintf("Refund Order No: %d - %s", orderID, details.Product.Title)
		if _, err := s.Ledger.Refund(ctx, details.Order.EmployeeID, amount, description); err != nil {
			return internalFailure("refund order", err)
		}
	}

	s.notifyStatusChange(ctx, details, target)
	return nil
}

// CancelOrder is the employee-facing cancellation path: only the order's
// owner may cancel, and only while the order is still SUBMITTED.
func (s OrderService) CancelOrder(ctx context.Context, actor domain.Actor, orderID int64) error {
	details, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return failure(KindNotFound, "update not successful")
	}
	if details.Order.EmployeeID != actor.EmployeeID {
		return failure(KindNotFound, "update not successful")
	}
	if details.Order.CurrentStatus != domain.StatusSubmitted {
		return failure(KindInvalidTransition, "only submitted orders can be cancelled")
	}
	return s.ChangeStatus(ctx, actor, orderID, domain.StatusCancelled, nil)
}

func (s OrderService) OrdersForEmployee(ctx context.Context, employeeID int64, transactionID *int64) ([]ports.OrderDetails, error) {
	out, err := s.Orders.ForEmployee(ctx, employeeID, transactionID)
	if err != nil {
		return nil, internalFailure("fetch orders", err)
	}
	return out, nil
}

// AdminOrders lists orders per typed filters, rejecting unknown status
// values with a field-level detail map.
func (s OrderService) AdminOrders(ctx context.Context, employeeID *int64, statuses []string, locations []string) ([]ports.OrderDetails, error) {
	f := ports.OrderFilters{EmployeeID: employeeID, Locations: locations}
	for _, raw := range statuses {
		status, ok := domain.ParseOrderStatus(raw)
		if !ok {
			return nil, validationFailure("invalid filters",
				map[string]string{"status": fmt.Sprintf("unknown status %q", raw)})
		}
		f.Statuses = append(f.Statuses, status)
	}
	out, err := s.Orders.Matching(ctx, f)
	if err != nil {
		return nil, internalFailure("fetch orders", err)
	}
	return out, nil
}

func (s OrderService) StatusCounts(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	counts, err := s.Orders.StatusCounts(ctx)
	if err != nil {
		return nil, internalFailure("fetch status counts", err)
	}
	return counts, nil
}

func (s OrderService) notifyPlaced(ctx context.Context, actor domain.Actor, orders []domain.Order, products []*domain.Product) {
	if s.Notifier == nil || s.Employees == nil {
		return
	}
	employee, err := s.Employees.ByEmployeeID(ctx, actor.EmployeeID)
	if err != nil || employee.Email == "" {
		return
	}
	var lines []string
	for i, o := range orders {
		lines = append(lines, fmt.Sprintf("Order No %d: %s x%d", o.OrderID, products[i].Title, o.Quantity))
	}
	body := fmt.Sprintf("Hi %s,\n\nYour order has been placed:\n%s\n", employee.Name, strings.Join(lines, "\n"))
	sendAsync(s.Notifier, employee.Email, "Order Placed", body)
}

func (s OrderService) notifyStatusChange(ctx context.Context, details *ports.OrderDetails, target domain.OrderStatus) {
	if s.Notifier == nil {
		return
	}
	email := details.Employee.Email
	if email == "" {
		return
	}
	balanceLine := ""
	if s.Ledger != nil {
		if b, err := s.Ledger.Balance(ctx, details.Order.EmployeeID); err == nil {
			balanceLine = fmt.Sprintf("\nAvailable balance: %d points\n", b.Available)
		}
	}
	body := fmt.Sprintf("Hi %s,\n\nOrder No %d (%s) is now %s.\n%s",
		details.Employee.Name, details.Order.OrderID, details.Product.Title, target, balanceLine)
	sendAsync(s.Notifier, email, fmt.Sprintf("Order No %d %s", details.Order.OrderID, target), body)
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}

func sendAsync(n ports.Notifier, to, subject, body string, attachments ...ports.Attachment) {
	go func() {
		if err := n.Send(context.Background(), to, subject, body, attachments...); err != nil {
			slog.Error("notification send failed", "to", to, "subject", subject, "error", err)
		}
	}()
}
