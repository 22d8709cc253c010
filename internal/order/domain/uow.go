package domain

import (
	"context"

	inventorydomain "github.com/supplycore/fulfillment/internal/inventory/domain"
)

// TxRepos exposes the repositories bound to one open transaction. Everything
// obtained through it reads and writes the same atomic scope.
type TxRepos interface {
	Orders() OrderRepository
	Invoices() InvoiceRepository
	Audit() AuditRepository
	Inventory() inventorydomain.InventoryRepository

	// LockInventory acquires row locks on the ledger rows for the given
	// products in ascending product id order, preventing deadlock between
	// transitions that touch overlapping product sets.
	LockInventory(productIDs []uint, holderID uint) error
}

// UnitOfWork runs fn inside a single transaction: fn returning an error
// rolls everything back, including inventory mutations already applied
// within the same call. Serialization failures surface as
// ErrPersistenceConflict so the caller can retry the whole unit.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx TxRepos) error) error
}
