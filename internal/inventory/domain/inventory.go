package domain

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrRecordNotFound indicates no ledger row exists for the product/holder pair
	ErrRecordNotFound = errors.New("inventory record not found")
	// ErrInsufficientStock indicates a reservation exceeds available stock
	ErrInsufficientStock = errors.New("insufficient available stock")
	// ErrInsufficientReserved indicates a deduction exceeds the reserved quantity
	ErrInsufficientReserved = errors.New("insufficient reserved stock")
	// ErrInvalidQuantity indicates a non-positive quantity was requested
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// InventoryRecord is the stock ledger row for one product held by one
// organization. QuantityReserved never exceeds QuantityOnHand; both are
// non-negative. Rows are soft-deactivated, never physically deleted.
type InventoryRecord struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	ProductID        uint           `json:"product_id" gorm:"not null;uniqueIndex:idx_product_holder"`
	HolderID         uint           `json:"holder_id" gorm:"not null;uniqueIndex:idx_product_holder"`
	QuantityOnHand   int            `json:"quantity_on_hand" gorm:"not null;default:0"`
	QuantityReserved int            `json:"quantity_reserved" gorm:"not null;default:0"`
	Version          int            `json:"version" gorm:"not null;default:0"`
	Active           bool           `json:"active" gorm:"not null;default:true"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// Available returns the quantity that can still be promised to new orders
func (r *InventoryRecord) Available() int {
	return r.QuantityOnHand - r.QuantityReserved
}

// CanReserve reports whether qty units can be promised
func (r *InventoryRecord) CanReserve(qty int) bool {
	return qty > 0 && r.Available() >= qty
}

// Reserve places a soft hold on qty units
func (r *InventoryRecord) Reserve(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if !r.CanReserve(qty) {
		return ErrInsufficientStock
	}
	r.QuantityReserved += qty
	return nil
}

// Release drops up to qty units of the current hold. Releasing more than is
// reserved clamps to zero rather than failing; rejection paths may race with
// partial shipments.
func (r *InventoryRecord) Release(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > r.QuantityReserved {
		qty = r.QuantityReserved
	}
	r.QuantityReserved -= qty
	return nil
}

// Deduct converts qty reserved units into consumed stock
func (r *InventoryRecord) Deduct(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > r.QuantityReserved {
		return ErrInsufficientReserved
	}
	r.QuantityReserved -= qty
	r.QuantityOnHand -= qty
	return nil
}

// Add restocks qty units, independent of any order
func (r *InventoryRecord) Add(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	r.QuantityOnHand += qty
	return nil
}

// InventoryRepository defines the contract for ledger data access. The four
// stock mutations are conditional single-row updates; callers own idempotency.
type InventoryRepository interface {
	Create(record *InventoryRecord) error
	FindByID(id uint) (*InventoryRecord, error)
	FindByProductAndHolder(productID, holderID uint) (*InventoryRecord, error)
	FindAll(limit, offset int) ([]InventoryRecord, error)
	Deactivate(id uint) error

	Reserve(productID, holderID uint, qty int) (*InventoryRecord, error)
	Release(productID, holderID uint, qty int) (*InventoryRecord, error)
	Deduct(productID, holderID uint, qty int) (*InventoryRecord, error)
	Add(productID, holderID uint, qty int) (*InventoryRecord, error)
}
