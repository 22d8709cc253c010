package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/supplycore/fulfillment/internal/inventory/domain"
)

// GormInventoryRepository persists the stock ledger in PostgreSQL. All four
// stock mutations are guarded single-statement updates so two concurrent
// transitions can never both observe the same available quantity and both
// succeed (the losing statement matches zero rows).
type GormInventoryRepository struct {
	db *gorm.DB
}

func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

func (r *GormInventoryRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.InventoryRecord{})
}

// WithTx returns a repository bound to an open transaction
func (r *GormInventoryRepository) WithTx(tx *gorm.DB) domain.InventoryRepository {
	return &GormInventoryRepository{db: tx}
}

func (r *GormInventoryRepository) Create(record *domain.InventoryRecord) error {
	record.Active = true
	return r.db.Create(record).Error
}

func (r *GormInventoryRepository) FindByID(id uint) (*domain.InventoryRecord, error) {
	var record domain.InventoryRecord
	err := r.db.First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *GormInventoryRepository) FindByProductAndHolder(productID, holderID uint) (*domain.InventoryRecord, error) {
	var record domain.InventoryRecord
	err := r.db.Where("product_id = ? AND holder_id = ?", productID, holderID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *GormInventoryRepository) FindAll(limit, offset int) ([]domain.InventoryRecord, error) {
	var records []domain.InventoryRecord
	err := r.db.Order("product_id, holder_id").Limit(limit).Offset(offset).Find(&records).Error
	return records, err
}

// Deactivate soft-disables a ledger row; stock history is never hard-deleted
func (r *GormInventoryRepository) Deactivate(id uint) error {
	res := r.db.Model(&domain.InventoryRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"active": false, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// LockForUpdate acquires row locks on the ledger rows for the given products,
// in ascending product id order so overlapping transitions cannot deadlock.
// Must run inside a transaction.
func (r *GormInventoryRepository) LockForUpdate(productIDs []uint, holderID uint) error {
	if len(productIDs) == 0 {
		return nil
	}
	var locked []domain.InventoryRecord
	return r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id IN ? AND holder_id = ?", productIDs, holderID).
		Order("product_id").
		Find(&locked).Error
}

// Reserve places a soft hold, failing when available stock is short
func (r *GormInventoryRepository) Reserve(productID, holderID uint, qty int) (*domain.InventoryRecord, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	res := r.db.Model(&domain.InventoryRecord{}).
		Where("product_id = ? AND holder_id = ? AND active AND quantity_on_hand - quantity_reserved >= ?",
			productID, holderID, qty).
		Updates(map[string]interface{}{
			"quantity_reserved": gorm.Expr("quantity_reserved + ?", qty),
			"version":           gorm.Expr("version + 1"),
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, r.classifyMiss(productID, holderID, domain.ErrInsufficientStock)
	}
	return r.FindByProductAndHolder(productID, holderID)
}

// Release drops up to qty units of an existing hold, clamping at zero
func (r *GormInventoryRepository) Release(productID, holderID uint, qty int) (*domain.InventoryRecord, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	res := r.db.Model(&domain.InventoryRecord{}).
		Where("product_id = ? AND holder_id = ?", productID, holderID).
		Updates(map[string]interface{}{
			"quantity_reserved": gorm.Expr("quantity_reserved - LEAST(quantity_reserved, ?)", qty),
			"version":           gorm.Expr("version + 1"),
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrRecordNotFound
	}
	return r.FindByProductAndHolder(productID, holderID)
}

// Deduct converts reserved units into consumed stock at dispatch time
func (r *GormInventoryRepository) Deduct(productID, holderID uint, qty int) (*domain.InventoryRecord, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	res := r.db.Model(&domain.InventoryRecord{}).
		Where("product_id = ? AND holder_id = ? AND quantity_reserved >= ?", productID, holderID, qty).
		Updates(map[string]interface{}{
			"quantity_on_hand":  gorm.Expr("quantity_on_hand - ?", qty),
			"quantity_reserved": gorm.Expr("quantity_reserved - ?", qty),
			"version":           gorm.Expr("version + 1"),
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, r.classifyMiss(productID, holderID, domain.ErrInsufficientReserved)
	}
	return r.FindByProductAndHolder(productID, holderID)
}

// Add restocks on-hand quantity, independent of any order
func (r *GormInventoryRepository) Add(productID, holderID uint, qty int) (*domain.InventoryRecord, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	res := r.db.Model(&domain.InventoryRecord{}).
		Where("product_id = ? AND holder_id = ?", productID, holderID).
		Updates(map[string]interface{}{
			"quantity_on_hand": gorm.Expr("quantity_on_hand + ?", qty),
			"version":          gorm.Expr("version + 1"),
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrRecordNotFound
	}
	return r.FindByProductAndHolder(productID, holderID)
}

// classifyMiss distinguishes a missing row from a failed quantity guard
func (r *GormInventoryRepository) classifyMiss(productID, holderID uint, guardErr error) error {
	if _, err := r.FindByProductAndHolder(productID, holderID); err != nil {
		return err
	}
	return guardErr
}
