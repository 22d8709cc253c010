package domain

import (
	"time"
)

// AuditEntry is one row of the append-only transition log. Structured
// columns instead of free text appended to the order: parseable, bounded,
// queryable per order.
type AuditEntry struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status" gorm:"not null"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	Actor      string      `json:"actor" gorm:"not null"`
	Note       string      `json:"note,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// TableName specifies the table name
func (AuditEntry) TableName() string {
	return "order_audit_entries"
}

// AuditRepository defines the contract for the transition log
type AuditRepository interface {
	Append(entry *AuditEntry) error
	ListByOrder(orderID uint) ([]AuditEntry, error)
}
