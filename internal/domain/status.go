package domain

type OrderStatus string

const (
	StatusSubmitted      OrderStatus = "SUBMITTED"
	StatusCancelled      OrderStatus = "CANCELLED"
	StatusAccepted       OrderStatus = "ACCEPTED"
	StatusReadyForPickup OrderStatus = "READY FOR PICKUP"
	StatusRejected       OrderStatus = "REJECTED"
	StatusDelivered      OrderStatus = "DELIVERED"
)

// allowedTransitions is the full transition table. Terminal states
// (CANCELLED, REJECTED, DELIVERED) have no entries.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusSubmitted:      {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted:       {StatusReadyForPickup, StatusRejected},
	StatusReadyForPickup: {StatusRejected, StatusDelivered},
}

// ParseOrderStatus maps a request value to a known status.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusSubmitted, StatusCancelled, StatusAccepted,
		StatusReadyForPickup, StatusRejected, StatusDelivered:
		return OrderStatus(s), true
	}
	return "", false
}

// CanTransition reports whether an order may move from current to next.
func CanTransition(current, next OrderStatus) bool {
	for _, allowed := range allowedTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func IsTerminal(s OrderStatus) bool {
	return len(allowedTransitions[s]) == 0
}

// IsRefundable reports whether entering this status refunds the order's
// points to the employee.
func IsRefundable(s OrderStatus) bool {
	return s == StatusRejected || s == StatusCancelled
}
