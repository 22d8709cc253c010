//go:build wireinject
// +build wireinject

package order

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	httpDelivery "github.com/supplycore/fulfillment/internal/order/delivery/http"
	"github.com/supplycore/fulfillment/internal/order/domain"
	"github.com/supplycore/fulfillment/internal/order/repository"
	"github.com/supplycore/fulfillment/internal/order/usecase/command"
	"github.com/supplycore/fulfillment/internal/order/usecase/query"
)

// Repository providers
func ProvideOrderRepository(db *gorm.DB) domain.OrderRepository {
	return repository.NewGormOrderRepositoryWithTracing(db)
}

func ProvideAuditRepository(db *gorm.DB) domain.AuditRepository {
	return repository.NewGormAuditRepository(db)
}

func ProvideUnitOfWork(db *gorm.DB) domain.UnitOfWork {
	return repository.NewGormUnitOfWork(db)
}

// Command handler providers
func ProvideCreateOrderHandler(repo domain.OrderRepository, catalog domain.ProductCatalog) *command.CreateOrderHandler {
	return command.NewCreateOrderHandler(repo, catalog)
}

func ProvideTransitionOrderHandler(uow domain.UnitOfWork, publisher command.EventPublisher, ledgerCache command.LedgerCacheInvalidator, cfg command.InvoiceConfig) *command.TransitionOrderHandler {
	return command.NewTransitionOrderHandler(uow, publisher, ledgerCache, cfg)
}

func ProvideGenerateInvoiceHandler(uow domain.UnitOfWork, cfg command.InvoiceConfig) *command.GenerateInvoiceHandler {
	return command.NewGenerateInvoiceHandler(uow, cfg)
}

// Query handler providers
func ProvideGetOrderHandler(repo domain.OrderRepository) *query.GetOrderHandler {
	return query.NewGetOrderHandler(repo)
}

func ProvideListOrdersHandler(repo domain.OrderRepository) *query.ListOrdersHandler {
	return query.NewListOrdersHandler(repo)
}

func ProvideGetAuditTrailHandler(repo domain.OrderRepository, audit domain.AuditRepository) *query.GetAuditTrailHandler {
	return query.NewGetAuditTrailHandler(repo, audit)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideOrderRepository,
	ProvideAuditRepository,
	ProvideUnitOfWork,
)

var CommandHandlerSet = wire.NewSet(
	ProvideCreateOrderHandler,
	ProvideTransitionOrderHandler,
	ProvideGenerateInvoiceHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetOrderHandler,
	ProvideListOrdersHandler,
	ProvideGetAuditTrailHandler,
)

// InitializeHTTPHandler initializes the order HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, catalog domain.ProductCatalog, publisher command.EventPublisher, ledgerCache command.LedgerCacheInvalidator, invoiceCfg command.InvoiceConfig) (*httpDelivery.OrderHandler, error) {
	wire.Build(
		RepositorySet,
		CommandHandlerSet,
		QueryHandlerSet,
		httpDelivery.NewOrderHandler,
	)
	return nil, nil
}
