package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	inventorydomain "github.com/supplycore/fulfillment/internal/inventory/domain"
	inventoryrepo "github.com/supplycore/fulfillment/internal/inventory/repository"
	"github.com/supplycore/fulfillment/internal/order/domain"
)

// GormUnitOfWork runs a function against transaction-scoped repositories.
// Repeatable-read isolation keeps two concurrent accepts from both reading
// the same available quantity and both committing.
type GormUnitOfWork struct {
	db *gorm.DB
}

func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

func (u *GormUnitOfWork) Do(ctx context.Context, fn func(tx domain.TxRepos) error) error {
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTxRepos{tx: tx})
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})

	if err != nil && IsSerializationFailure(err) {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceConflict, err)
	}
	return err
}

type gormTxRepos struct {
	tx *gorm.DB
}

func (t *gormTxRepos) Orders() domain.OrderRepository {
	return NewGormOrderRepository(t.tx)
}

func (t *gormTxRepos) Invoices() domain.InvoiceRepository {
	return NewGormInvoiceRepository(t.tx)
}

func (t *gormTxRepos) Audit() domain.AuditRepository {
	return NewGormAuditRepository(t.tx)
}

func (t *gormTxRepos) Inventory() inventorydomain.InventoryRepository {
	return inventoryrepo.NewGormInventoryRepository(t.tx)
}

func (t *gormTxRepos) LockInventory(productIDs []uint, holderID uint) error {
	return inventoryrepo.NewGormInventoryRepository(t.tx).LockForUpdate(productIDs, holderID)
}

// IsSerializationFailure reports whether err is a retriable transaction
// conflict (serialization failure or deadlock)
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}

// IsUniqueViolation reports whether err is a unique-constraint violation
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
