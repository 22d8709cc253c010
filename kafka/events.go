package kafka

import "time"

// OrderStatusChangedEvent represents a committed order status transition
type OrderStatusChangedEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	OrderID        uint      `json:"order_id"`
	OrderNumber    string    `json:"order_number"`
	BuyerID        uint      `json:"buyer_id"`
	SellerID       uint      `json:"seller_id"`
	PreviousStatus string    `json:"previous_status"`
	CurrentStatus  string    `json:"current_status"`
	Actor          string    `json:"actor"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Event types
const (
	EventTypeOrderStatusChanged = "order.status_changed"
)

// Kafka topics
const (
	TopicOrderStatusChanged = "order-status-changed"
)
