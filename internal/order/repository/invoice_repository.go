package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/supplycore/fulfillment/internal/order/domain"
)

// GormInvoiceRepository persists invoices. Uniqueness on order_id and on the
// invoice number is enforced by the schema; concurrent duplicate generation
// is resolved by the caller re-reading the winning row.
type GormInvoiceRepository struct {
	db *gorm.DB
}

func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Invoice{})
}

func (r *GormInvoiceRepository) Create(invoice *domain.Invoice) error {
	return r.db.Create(invoice).Error
}

func (r *GormInvoiceRepository) FindByOrderID(orderID uint) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.Where("order_id = ?", orderID).First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}
