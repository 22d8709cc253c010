package domain

// OrderStatus is the canonical fulfillment vocabulary. Buyer- and
// seller-facing callers share this single table so the state machine cannot
// drift between entry points.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusAccepted   OrderStatus = "accepted"
	StatusRejected   OrderStatus = "rejected"
	StatusPacked     OrderStatus = "packed"
	StatusDispatched OrderStatus = "dispatched"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// statusTransitions is the only source of transition validity. rejected,
// delivered and cancelled are terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted:   {StatusPacked, StatusCancelled},
	StatusPacked:     {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusDelivered},
}

// ValidStatus reports whether s is part of the vocabulary
func ValidStatus(s OrderStatus) bool {
	if _, ok := statusTransitions[s]; ok {
		return true
	}
	return s == StatusRejected || s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether target is reachable from current. It is a
// pure lookup: no side effects, no I/O. Re-requesting the current status is
// invalid so blind retries are rejected instead of silently re-applied.
func CanTransition(current, target OrderStatus) bool {
	if current == target {
		return false
	}
	for _, next := range statusTransitions[current] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted from s
func IsTerminal(s OrderStatus) bool {
	return len(statusTransitions[s]) == 0
}

// ReservesInventory reports whether stock is held for an order in status s
func ReservesInventory(s OrderStatus) bool {
	return s == StatusAccepted || s == StatusPacked
}
