package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound indicates the order does not exist
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidTransition indicates the requested status is not reachable
	// from the current status
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrEmptyOrder indicates an order was submitted without lines
	ErrEmptyOrder = errors.New("order must contain at least one line")
	// ErrInvalidShipment indicates a dispatch request with a bad line
	// reference or quantity
	ErrInvalidShipment = errors.New("invalid shipment quantity")
	// ErrPersistenceConflict indicates a serialization or optimistic-lock
	// failure; the whole transition is retried
	ErrPersistenceConflict = errors.New("persistence conflict")
	// ErrBusy is surfaced after the bounded retry budget is exhausted
	ErrBusy = errors.New("order is busy, retry later")
)

// InsufficientInventoryError reports which products could not be reserved or
// deducted. The enclosing transaction is rolled back in full.
type InsufficientInventoryError struct {
	ProductIDs []uint
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for products %v", e.ProductIDs)
}

// Order is the purchase order aggregate: a header plus its lines. Status is
// written only by the fulfillment orchestrator; orders are never hard-deleted
// once placed (cancellation is a terminal status, not a deletion).
type Order struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	OrderNumber string          `json:"order_number" gorm:"not null;uniqueIndex"`
	BuyerID     uint            `json:"buyer_id" gorm:"not null;index"`
	SellerID    uint            `json:"seller_id" gorm:"not null;index"`
	Status      OrderStatus     `json:"status" gorm:"not null;default:'pending';index"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(20,4);not null"`
	Lines       []OrderLine     `json:"lines" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Order) TableName() string {
	return "orders"
}

// ComputeTotal returns the sum of line totals
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].LineTotal())
	}
	return total
}

// OrderLine is one product position on an order. UnitPrice is a snapshot
// taken at order time so later catalog price changes never rewrite history.
type OrderLine struct {
	ID                  uint            `json:"id" gorm:"primaryKey"`
	OrderID             uint            `json:"order_id" gorm:"not null;uniqueIndex:idx_order_line,priority:1"`
	LineNo              int             `json:"line_no" gorm:"not null;uniqueIndex:idx_order_line,priority:2"`
	ProductID           uint            `json:"product_id" gorm:"not null;index"`
	QuantityOrdered     int             `json:"quantity_ordered" gorm:"not null"`
	UnitPrice           decimal.Decimal `json:"unit_price" gorm:"type:decimal(20,4);not null"`
	QuantityShipped     int             `json:"quantity_shipped" gorm:"not null;default:0"`
	QuantityBackordered int             `json:"quantity_backordered" gorm:"not null;default:0"`
	ExpectedRestockAt   *time.Time      `json:"expected_restock_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (OrderLine) TableName() string {
	return "order_lines"
}

// LineTotal returns quantity ordered times the unit price snapshot
func (l *OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.QuantityOrdered)))
}

// RecordShipment books a full or partial shipment against the line. The
// shortfall becomes the backorder; shipped + backordered always equals the
// ordered quantity afterwards.
func (l *OrderLine) RecordShipment(quantity int, expectedRestockAt *time.Time) error {
	if quantity <= 0 || quantity > l.QuantityOrdered {
		return fmt.Errorf("%w: line %d ships %d of %d ordered",
			ErrInvalidShipment, l.LineNo, quantity, l.QuantityOrdered)
	}
	l.QuantityShipped = quantity
	l.QuantityBackordered = l.QuantityOrdered - quantity
	if l.QuantityBackordered > 0 {
		l.ExpectedRestockAt = expectedRestockAt
	}
	return nil
}

// OrderFilter narrows list queries
type OrderFilter struct {
	BuyerID  *uint
	SellerID *uint
	Status   *OrderStatus
	Limit    int
	Offset   int
}

// OrderRepository defines the contract for order data access. Reads used by
// the orchestrator lock the order row for the duration of the transaction.
type OrderRepository interface {
	Create(order *Order) error
	FindByID(id uint) (*Order, error)
	FindByIDForUpdate(id uint) (*Order, error)
	FindAll(filter OrderFilter) ([]Order, error)
	Update(order *Order) error
}
