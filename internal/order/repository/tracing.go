package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/supplycore/fulfillment/internal/order/domain"
)

var tracer = otel.Tracer("order-repository")

// GormOrderRepositoryWithTracing wraps GormOrderRepository with tracing for
// context-aware call sites
type GormOrderRepositoryWithTracing struct {
	*GormOrderRepository
}

func NewGormOrderRepositoryWithTracing(db *gorm.DB) *GormOrderRepositoryWithTracing {
	return &GormOrderRepositoryWithTracing{
		GormOrderRepository: NewGormOrderRepository(db),
	}
}

// FindByIDWithContext traces an order lookup
func (r *GormOrderRepositoryWithTracing) FindByIDWithContext(ctx context.Context, id uint) (*domain.Order, error) {
	_, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(
			attribute.Int("order.id", int(id)),
		),
	)
	defer span.End()

	order, err := r.GormOrderRepository.FindByID(id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.status", string(order.Status)),
		attribute.Int("order.lines", len(order.Lines)),
	)
	return order, nil
}

// CreateWithContext traces order creation
func (r *GormOrderRepositoryWithTracing) CreateWithContext(ctx context.Context, order *domain.Order) error {
	_, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.Int("order.buyer_id", int(order.BuyerID)),
			attribute.Int("order.seller_id", int(order.SellerID)),
			attribute.Int("order.lines", len(order.Lines)),
		),
	)
	defer span.End()

	if err := r.GormOrderRepository.Create(order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("order.id", int(order.ID)))
	return nil
}
