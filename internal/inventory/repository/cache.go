package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/supplycore/fulfillment/internal/inventory/domain"
	"github.com/supplycore/fulfillment/pkg/logger"
)

// ledgerPairKey is the cache key for one (product, holder) ledger row. The
// pair lookup is the only cached read; keying everything by pair means one
// eviction covers every cached view of the row.
func ledgerPairKey(productID, holderID uint) string {
	return fmt.Sprintf("inventory:product:%d:holder:%d", productID, holderID)
}

// CachedInventoryRepository is a read-through Redis cache in front of the
// ledger. Only the availability lookup is cached; every mutation goes
// straight to the database and drops the affected key. The TTL is short
// because availability changes with every transition.
type CachedInventoryRepository struct {
	repo  domain.InventoryRepository
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedInventoryRepository(repo domain.InventoryRepository, client *redis.Client, ttl time.Duration) domain.InventoryRepository {
	return &CachedInventoryRepository{repo: repo, redis: client, ttl: ttl}
}

func (r *CachedInventoryRepository) get(key string) *domain.InventoryRecord {
	raw, err := r.redis.Get(context.Background(), key).Bytes()
	if err != nil {
		return nil
	}
	var record domain.InventoryRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil
	}
	return &record
}

func (r *CachedInventoryRepository) set(key string, record *domain.InventoryRecord) {
	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := r.redis.Set(context.Background(), key, raw, r.ttl).Err(); err != nil {
		logger.Logger.Debug().Err(err).Str("key", key).Msg("Inventory cache write failed")
	}
}

func (r *CachedInventoryRepository) invalidate(record *domain.InventoryRecord) {
	if record == nil {
		return
	}
	r.redis.Del(context.Background(), ledgerPairKey(record.ProductID, record.HolderID))
}

func (r *CachedInventoryRepository) Create(record *domain.InventoryRecord) error {
	if err := r.repo.Create(record); err != nil {
		return err
	}
	r.invalidate(record)
	return nil
}

// FindByID is not cached; record-id lookups are admin traffic, and caching
// them under a second key would need a second eviction path
func (r *CachedInventoryRepository) FindByID(id uint) (*domain.InventoryRecord, error) {
	return r.repo.FindByID(id)
}

func (r *CachedInventoryRepository) FindByProductAndHolder(productID, holderID uint) (*domain.InventoryRecord, error) {
	if cached := r.get(ledgerPairKey(productID, holderID)); cached != nil {
		return cached, nil
	}
	record, err := r.repo.FindByProductAndHolder(productID, holderID)
	if err != nil {
		return nil, err
	}
	r.set(ledgerPairKey(productID, holderID), record)
	return record, nil
}

// FindAll is not cached; list pages are cheap and rarely hot
func (r *CachedInventoryRepository) FindAll(limit, offset int) ([]domain.InventoryRecord, error) {
	return r.repo.FindAll(limit, offset)
}

func (r *CachedInventoryRepository) Deactivate(id uint) error {
	record, _ := r.repo.FindByID(id)
	if err := r.repo.Deactivate(id); err != nil {
		return err
	}
	r.invalidate(record)
	return nil
}

func (r *CachedInventoryRepository) Reserve(productID, holderID uint, qty int) (*domain.InventoryRecord, error) {
	record, err := r.repo.Reserve(productID, holderID, qty)
	if err != nil {
		return nil, err
	}
	r.invalidate(record)
	return record, nil
}

func (r *CachedInventoryRepository) Release(productID, holderID uint, qty int) (*domain.InventoryRecord, error) {
	record, err := r.repo.Release(productID, holderID, qty)
	if err != nil {
		return nil, err
	}
	r.invalidate(record)
	return record, nil
}

func (r *CachedInventoryRepository) Deduct(productID, holderID uint, qty int) (*domain.InventoryRecord, error) {
	record, err := r.repo.Deduct(productID, holderID, qty)
	if err != nil {
		return nil, err
	}
	r.invalidate(record)
	return record, nil
}

func (r *CachedInventoryRepository) Add(productID, holderID uint, qty int) (*domain.InventoryRecord, error) {
	record, err := r.repo.Add(productID, holderID, qty)
	if err != nil {
		return nil, err
	}
	r.invalidate(record)
	return record, nil
}

// LedgerCacheEvictor drops cached availability for ledger rows mutated
// outside the cached repository. The order transition path writes through
// its own transaction-scoped repositories, so it evicts here after commit.
type LedgerCacheEvictor struct {
	redis *redis.Client
}

func NewLedgerCacheEvictor(client *redis.Client) *LedgerCacheEvictor {
	return &LedgerCacheEvictor{redis: client}
}

func (e *LedgerCacheEvictor) InvalidatePair(productID, holderID uint) {
	if err := e.redis.Del(context.Background(), ledgerPairKey(productID, holderID)).Err(); err != nil {
		logger.Logger.Debug().
			Err(err).
			Uint("product_id", productID).
			Uint("holder_id", holderID).
			Msg("Inventory cache eviction failed")
	}
}
