package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvoiceNotFound indicates no invoice exists for the order
var ErrInvoiceNotFound = errors.New("invoice not found")

// Invoice is the financial document generated exactly once per delivered
// order. OrderID is the idempotency key; the invoice number is derived
// deterministically so a retried generation always produces the same row.
type Invoice struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	OrderID       uint            `json:"order_id" gorm:"not null;uniqueIndex"`
	InvoiceNumber string          `json:"invoice_number" gorm:"not null;uniqueIndex"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:decimal(20,4);not null"`
	TaxRate       decimal.Decimal `json:"tax_rate" gorm:"type:decimal(8,4);not null"`
	TaxAmount     decimal.Decimal `json:"tax_amount" gorm:"type:decimal(20,4);not null"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(20,4);not null"`
	IssuedAt      time.Time       `json:"issued_at" gorm:"not null"`
	DueAt         time.Time       `json:"due_at" gorm:"not null"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TableName specifies the table name
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceNumberFor derives the human-readable invoice number from the issue
// date and order id
func InvoiceNumberFor(orderID uint, issuedAt time.Time) string {
	return fmt.Sprintf("INV-%s-%06d", issuedAt.UTC().Format("20060102"), orderID)
}

// InvoiceRepository defines the contract for invoice data access
type InvoiceRepository interface {
	Create(invoice *Invoice) error
	FindByOrderID(orderID uint) (*Invoice, error)
}
