//go:build wireinject
// +build wireinject

package inventory

import (
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	httpDelivery "github.com/supplycore/fulfillment/internal/inventory/delivery/http"
	"github.com/supplycore/fulfillment/internal/inventory/domain"
	"github.com/supplycore/fulfillment/internal/inventory/repository"
	"github.com/supplycore/fulfillment/internal/inventory/usecase/command"
	"github.com/supplycore/fulfillment/internal/inventory/usecase/query"
)

// ProvideInventoryRepository provides the ledger repository, wrapped in the
// Redis read-through cache when a client is configured
func ProvideInventoryRepository(db *gorm.DB, redisClient *redis.Client) domain.InventoryRepository {
	repo := repository.NewGormInventoryRepositoryWithTracing(db)
	if redisClient == nil {
		return repo
	}
	return repository.NewCachedInventoryRepository(repo, redisClient, 30*time.Second)
}

// Command handler providers
func ProvideCreateRecordHandler(repo domain.InventoryRepository) *command.CreateRecordHandler {
	return command.NewCreateRecordHandler(repo)
}

func ProvideRestockHandler(repo domain.InventoryRepository) *command.RestockHandler {
	return command.NewRestockHandler(repo)
}

func ProvideDeactivateRecordHandler(repo domain.InventoryRepository) *command.DeactivateRecordHandler {
	return command.NewDeactivateRecordHandler(repo)
}

// Query handler providers
func ProvideGetRecordHandler(repo domain.InventoryRepository) *query.GetRecordHandler {
	return query.NewGetRecordHandler(repo)
}

func ProvideListRecordsHandler(repo domain.InventoryRepository) *query.ListRecordsHandler {
	return query.NewListRecordsHandler(repo)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideInventoryRepository,
)

var CommandHandlerSet = wire.NewSet(
	ProvideCreateRecordHandler,
	ProvideRestockHandler,
	ProvideDeactivateRecordHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetRecordHandler,
	ProvideListRecordsHandler,
)

// InitializeHTTPHandler initializes the inventory HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, redisClient *redis.Client) (*httpDelivery.InventoryHandler, error) {
	wire.Build(
		RepositorySet,
		CommandHandlerSet,
		QueryHandlerSet,
		httpDelivery.NewInventoryHandler,
	)
	return nil, nil
}
