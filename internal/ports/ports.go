package ports

import (
	"context"
	"errors"
	"time"

	"rewardshub-backend/internal/domain"
)

// Store-level sentinels. Services translate these into their own failure
// kinds at the operation boundary.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrInsufficientBalance is returned by a guarded debit whose condition
	// did not hold at write time.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// SequenceAllocator issues monotonically increasing identifiers per named
// counter. Next is atomic with respect to concurrent callers; the first
// value issued for a counter is 1.
type SequenceAllocator interface {
	Next(ctx context.Context, name string) (int64, error)
}

// Counter names used across the system.
const (
	SeqOrders       = "orders"
	SeqTransactions = "transactions"
	SeqJobs         = "jobs"
	SeqProducts     = "products"
)

// PointsLedger owns per-employee balances and their transaction log. Every
// method is one atomic storage operation: the balance change and the ledger
// entry recording it are written together or not at all.
type PointsLedger interface {
	// Balance returns the employee's balance, or ErrNotFound if the
	// employee has never been credited.
	Balance(ctx context.Context, employeeID int64) (*domain.PointsBalance, error)

	// Credit adds amount to total (creating the balance row on first
	// credit) and records a credited transaction.
	Credit(ctx context.Context, employeeID, amount int64, description string) (*domain.Transaction, error)

	// Debit adds amount to redeemed, guarded by available >= amount, and
	// records a debited transaction. Returns ErrInsufficientBalance when
	// the guard fails and ErrNotFound when no balance row exists.
	Debit(ctx context.Context, employeeID, amount int64, description string) (*domain.Transaction, error)

	// Refund reverses an earlier debit: redeemed decreases by amount and a
	// credited transaction is recorded. Total is untouched.
	Refund(ctx context.Context, employeeID, amount int64, description string) (*domain.Transaction, error)

	// ExpireAvailable debits the employee's entire available balance,
	// forcing it to zero. Returns (nil, nil) when there is nothing to
	// expire.
	ExpireAvailable(ctx context.Context, employeeID int64, description string) (*domain.Transaction, error)

	// Transactions lists the employee's ledger entries, oldest first when
	// sortAsc.
	Transactions(ctx context.Context, employeeID int64, sortAsc bool) ([]domain.Transaction, error)
}

// CreateOrderInput describes a confirmed order line entering the store. The
// order id is allocated by the caller before the paying debit, because the
// debit's ledger description references it.
type CreateOrderInput struct {
	OrderID       int64
	EmployeeID    int64
	ProductID     int64
	Quantity      int
	Customisation domain.Customisation
	TransactionID int64
	Initial       domain.OrderHistoryEntry
}

// OrderDetails joins an order with its product, owner and audit trail.
type OrderDetails struct {
	Order    domain.Order
	Product  domain.Product
	Employee domain.Employee
	History  []domain.OrderHistoryEntry
}

// OrderFilters narrows the admin order listing. Nil/empty fields match
// everything.
type OrderFilters struct {
	EmployeeID *int64
	Statuses   []domain.OrderStatus
	Locations  []string
}

// OrderStore persists orders and their append-only status history.
type OrderStore interface {
	// Create inserts the order and its initial history entry atomically.
	Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error)

	// Get returns the order joined with product, employee and history.
	Get(ctx context.Context, orderID int64) (*OrderDetails, error)

	// AppendStatus appends a history entry and moves current_status in one
	// atomic write. The write only lands while current_status still equals
	// from, so two interleaved transitions cannot both win.
	AppendStatus(ctx context.Context, orderID int64, from domain.OrderStatus, entry domain.OrderHistoryEntry) error

	// ForEmployee lists the employee's orders, oldest first, optionally
	// narrowed to the order paid by the given transaction.
	ForEmployee(ctx context.Context, employeeID int64, transactionID *int64) ([]OrderDetails, error)

	// Matching lists orders per typed filters (admin view).
	Matching(ctx context.Context, f OrderFilters) ([]OrderDetails, error)

	// StatusCounts tallies orders per current status.
	StatusCounts(ctx context.Context) (map[domain.OrderStatus]int64, error)

	// HasDeliveredOrder reports whether the employee has a DELIVERED order
	// for the product.
	HasDeliveredOrder(ctx context.Context, employeeID, productID int64) (bool, error)
}

// CartStore persists cart lines. Customisation matching is done by the
// reconciler, not the store.
type CartStore interface {
	Lines(ctx context.Context, employeeID int64) ([]domain.CartLine, error)
	LinesFor(ctx context.Context, employeeID, productID int64) ([]domain.CartLine, error)
	Insert(ctx context.Context, line domain.CartLine) error
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	Delete(ctx context.Context, id int64) error
	Clear(ctx context.Context, employeeID int64) error
}

// CreateRewardInput describes an unassigned reward entering the store.
type CreateRewardInput struct {
	EncryptedCouponCode string
	CategoryID          int64
	Description         string
	RewardPoints        int64
	AddedBy             int64
}

// RewardFilters narrows the HR reward listing. Nil fields match everything.
type RewardFilters struct {
	RewardeeEmployeeID *int64
	AddedBy            *int64
	CategoryID         *int64
	StartDate          *time.Time
	EndDate            *time.Time
}

// RewardStore persists rewards, their categories and coupon claims.
type RewardStore interface {
	Create(ctx context.Context, in CreateRewardInput) (*domain.Reward, error)
	Delete(ctx context.Context, id int64) error

	// FindByEncryptedCode returns the reward carrying the sealed coupon
	// code, or ErrNotFound.
	FindByEncryptedCode(ctx context.Context, code string) (*domain.Reward, error)

	// Claim marks the reward claimed by the employee, conditional on it
	// not being expired. Returns false when the coupon was already claimed
	// or expired; this is the one-time redemption gate.
	Claim(ctx context.Context, rewardID, employeeID int64) (bool, error)

	// SetTransaction attaches the crediting transaction to a claimed
	// reward.
	SetTransaction(ctx context.Context, rewardID, transactionID int64) error

	// Unclaim reverts a claim whose crediting step failed (best-effort
	// compensation).
	Unclaim(ctx context.Context, rewardID int64) error

	// ExpireAll invalidates every unclaimed coupon, clearing its sealed
	// code. Returns the number of coupons expired.
	ExpireAll(ctx context.Context) (int64, error)

	ClaimedForEmployee(ctx context.Context, employeeID int64, sortAsc bool) ([]domain.Reward, error)
	Claimed(ctx context.Context, f RewardFilters, sortAsc bool) ([]domain.Reward, error)

	// UpsertCategory returns the category named, creating it when absent.
	// The bool reports whether a row was created.
	UpsertCategory(ctx context.Context, name string) (*domain.RewardCategory, bool, error)
	DeleteCategory(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]domain.RewardCategory, error)
}

// JobStore persists the single-slot expiration job and its log.
type JobStore interface {
	// Active returns the scheduled job, or ErrNotFound when the slot is
	// empty.
	Active(ctx context.Context) (*domain.ExpirationJob, error)

	// Schedule fills the slot, allocating the job id and writing the log
	// row atomically. Returns ErrDuplicate when the slot is taken.
	Schedule(ctx context.Context, expirationDate time.Time, addedBy int64) (*domain.ExpirationJob, error)

	// Delete empties the slot.
	Delete(ctx context.Context, jobID int64) error

	// LogOutcome records how the job ended in its log row.
	LogOutcome(ctx context.Context, jobID int64, completed, cancelled bool) error
}

// ProductCatalog is the product lookup surface the core validates against.
type ProductCatalog interface {
	ByID(ctx context.Context, productID int64) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, title string, rewardPoints int64, isCustomisable bool, imageURL string) (*domain.Product, error)
	Sizes(ctx context.Context) ([]string, error)
	Colors(ctx context.Context) ([]string, error)
}

// EmployeeDirectory resolves employees for auth, rewards and notifications.
type EmployeeDirectory interface {
	ByEmployeeID(ctx context.Context, employeeID int64) (*domain.Employee, error)
	ByEmail(ctx context.Context, email string) (*domain.Employee, error)
	Create(ctx context.Context, e domain.Employee) (*domain.Employee, error)
	All(ctx context.Context) ([]domain.Employee, error)
}

// Attachment is an in-memory mail attachment.
type Attachment struct {
	Filename string
	Content  []byte
}

// Notifier delivers outbound notifications. Callers treat delivery as
// best-effort: failures are logged, never rolled back into ledger state.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string, attachments ...Attachment) error
}
