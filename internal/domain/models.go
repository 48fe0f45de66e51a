package domain

import (
	"fmt"
	"time"
)

// Enumerations
const (
	RoleUser  EmployeeRole = "user"
	RoleHR    EmployeeRole = "hr"
	RoleAdmin EmployeeRole = "admin"
)

type EmployeeRole string

// DateLayout is the display format used for history entries, transaction
// dates and reward dates.
const DateLayout = "02 Jan 2006"

type Employee struct {
	ID           int64
	EmployeeID   int64
	Name         string
	Email        string
	Location     string
	Role         EmployeeRole
	PasswordHash *string
	CreatedAt    time.Time
}

// Actor identifies who performed a mutation, for audit trails.
type Actor struct {
	EmployeeID int64
	Name       string
}

// PointsBalance is the per-employee wallet. available = total - redeemed
// must hold after every mutation.
type PointsBalance struct {
	EmployeeID int64
	Total      int64
	Redeemed   int64
	Available  int64
	UpdatedAt  time.Time
}

// Transaction is an immutable ledger entry. BalanceAfter records the
// available balance resulting from this entry.
type Transaction struct {
	ID            int64
	TransactionID int64
	EmployeeID    int64
	Description   string
	IsCredited    bool
	Amount        int64
	BalanceAfter  int64
	CreatedAt     time.Time
}

// DisplayAmount renders the signed amount for presentation ("+50" / "-40").
func (t Transaction) DisplayAmount() string {
	if t.IsCredited {
		return fmt.Sprintf("+%d", t.Amount)
	}
	return fmt.Sprintf("-%d", t.Amount)
}

// DisplayTransactionID renders the zero-padded external id ("T0000123").
func (t Transaction) DisplayTransactionID() string {
	return fmt.Sprintf("T%07d", t.TransactionID)
}

// DisplayDate renders the creation date for presentation.
func (t Transaction) DisplayDate() string {
	return t.CreatedAt.Format(DateLayout)
}

// Customisation holds the optional per-order product options. Empty fields
// mean "not customised".
type Customisation struct {
	Size  string
	Color string
}

func (c Customisation) IsZero() bool {
	return c.Size == "" && c.Color == ""
}

type Order struct {
	ID            int64
	OrderID       int64
	EmployeeID    int64
	ProductID     int64
	Quantity      int
	Customisation Customisation
	TransactionID int64
	CurrentStatus OrderStatus
	CreatedAt     time.Time
}

// OrderHistoryEntry is one row of an order's append-only audit trail.
type OrderHistoryEntry struct {
	ActorID   int64
	ActorName string
	Status    OrderStatus
	Reason    *string
	ChangedAt string
}

type Product struct {
	ID             int64
	ProductID      int64
	Title          string
	RewardPoints   int64
	IsCustomisable bool
	ImageURL       string
	CreatedAt      time.Time
}

// CartLine is keyed by (employee, product, customisation). Quantity zero is
// never stored; it means delete-on-write.
type CartLine struct {
	ID            int64
	EmployeeID    int64
	ProductID     int64
	Quantity      int
	Customisation Customisation
	CreatedAt     time.Time
}

type RewardCategory struct {
	ID   int64
	Name string
}

// Reward is created unassigned and becomes claimed exactly once, when its
// coupon is redeemed.
type Reward struct {
	ID                  int64
	EncryptedCouponCode *string
	IsCouponExpired     bool
	CategoryID          int64
	CategoryName        string
	Description         string
	RewardPoints        int64
	AddedBy             int64
	RewardeeEmployeeID  *int64
	TransactionID       *int64
	CreatedAt           time.Time
}

// ExpirationJob is the single-slot scheduled task that invalidates all
// outstanding points and coupons on its date.
type ExpirationJob struct {
	ID             int64
	JobID          int64
	ExpirationDate time.Time
	IsActive       bool
	IsCancelled    bool
	IsCompleted    bool
	AddedBy        int64
	CreatedAt      time.Time
}

type JobLog struct {
	ID             int64
	JobID          int64
	ExpirationDate time.Time
	IsActive       bool
	IsCancelled    bool
	IsCompleted    bool
	AddedBy        int64
	CreatedAt      time.Time
}
