package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/supplycore/fulfillment/internal/order/domain"
)

// GormOrderRepository persists orders and their lines in PostgreSQL
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Order{}, &domain.OrderLine{})
}

func (r *GormOrderRepository) Create(order *domain.Order) error {
	return r.db.Create(order).Error
}

func (r *GormOrderRepository) FindByID(id uint) (*domain.Order, error) {
	var order domain.Order
	err := r.db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_no")
	}).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate loads the order header under FOR UPDATE, then its lines.
// The header lock serializes concurrent transitions on the same order; lines
// are only written by the holder of that lock.
func (r *GormOrderRepository) FindByIDForUpdate(id uint) (*domain.Order, error) {
	var order domain.Order
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.db.Where("order_id = ?", id).Order("line_no").Find(&order.Lines).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindAll(filter domain.OrderFilter) ([]domain.Order, error) {
	q := r.db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_no")
	})
	if filter.BuyerID != nil {
		q = q.Where("buyer_id = ?", *filter.BuyerID)
	}
	if filter.SellerID != nil {
		q = q.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	var orders []domain.Order
	err := q.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&orders).Error
	return orders, err
}

func (r *GormOrderRepository) Update(order *domain.Order) error {
	if err := r.db.Omit(clause.Associations).Save(order).Error; err != nil {
		return err
	}
	for i := range order.Lines {
		if err := r.db.Save(&order.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
