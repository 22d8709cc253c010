package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/supplycore/fulfillment/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

// GormInventoryRepositoryWithTracing wraps GormInventoryRepository with tracing
// for the context-aware call sites (HTTP delivery).
type GormInventoryRepositoryWithTracing struct {
	*GormInventoryRepository
}

func NewGormInventoryRepositoryWithTracing(db *gorm.DB) *GormInventoryRepositoryWithTracing {
	return &GormInventoryRepositoryWithTracing{
		GormInventoryRepository: NewGormInventoryRepository(db),
	}
}

// FindByPairWithContext traces a product/holder ledger lookup
func (r *GormInventoryRepositoryWithTracing) FindByPairWithContext(ctx context.Context, productID, holderID uint) (*domain.InventoryRecord, error) {
	_, span := tracer.Start(ctx, "repository.FindByProductAndHolder",
		trace.WithAttributes(
			attribute.Int("inventory.product_id", int(productID)),
			attribute.Int("inventory.holder_id", int(holderID)),
		),
	)
	defer span.End()

	record, err := r.FindByProductAndHolder(productID, holderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("inventory.on_hand", record.QuantityOnHand),
		attribute.Int("inventory.reserved", record.QuantityReserved),
	)
	return record, nil
}

// ReserveWithContext traces a reservation attempt
func (r *GormInventoryRepositoryWithTracing) ReserveWithContext(ctx context.Context, productID, holderID uint, qty int) (*domain.InventoryRecord, error) {
	_, span := tracer.Start(ctx, "repository.Reserve",
		trace.WithAttributes(
			attribute.Int("inventory.product_id", int(productID)),
			attribute.Int("inventory.holder_id", int(holderID)),
			attribute.Int("inventory.quantity", qty),
		),
	)
	defer span.End()

	record, err := r.Reserve(productID, holderID, qty)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("inventory.reserved", record.QuantityReserved))
	return record, nil
}

// AddWithContext traces a restock
func (r *GormInventoryRepositoryWithTracing) AddWithContext(ctx context.Context, productID, holderID uint, qty int) (*domain.InventoryRecord, error) {
	_, span := tracer.Start(ctx, "repository.Add",
		trace.WithAttributes(
			attribute.Int("inventory.product_id", int(productID)),
			attribute.Int("inventory.holder_id", int(holderID)),
			attribute.Int("inventory.quantity", qty),
		),
	)
	defer span.End()

	record, err := r.Add(productID, holderID, qty)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("inventory.on_hand", record.QuantityOnHand))
	return record, nil
}
