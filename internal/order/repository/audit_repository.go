package repository

import (
	"gorm.io/gorm"

	"github.com/supplycore/fulfillment/internal/order/domain"
)

// GormAuditRepository persists the append-only transition log
type GormAuditRepository struct {
	db *gorm.DB
}

func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.AuditEntry{})
}

func (r *GormAuditRepository) Append(entry *domain.AuditEntry) error {
	return r.db.Create(entry).Error
}

func (r *GormAuditRepository) ListByOrder(orderID uint) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	err := r.db.Where("order_id = ?", orderID).Order("created_at, id").Find(&entries).Error
	return entries, err
}
