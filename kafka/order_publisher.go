package kafka

import (
	"context"

	"github.com/supplycore/fulfillment/internal/order/usecase/command"
)

// OrderEventPublisher adapts the Kafka publisher to the order usecase
// contract so the orchestrator stays free of broker details.
type OrderEventPublisher struct {
	publisher *Publisher
}

// NewOrderEventPublisher creates a new order event publisher
func NewOrderEventPublisher(publisher *Publisher) *OrderEventPublisher {
	return &OrderEventPublisher{publisher: publisher}
}

// PublishOrderStatusChanged publishes the transition event to Kafka
func (a *OrderEventPublisher) PublishOrderStatusChanged(ctx context.Context, event command.StatusChangedEvent) error {
	return a.publisher.PublishOrderStatusChanged(ctx, OrderStatusChangedEvent{
		OrderID:        event.OrderID,
		OrderNumber:    event.OrderNumber,
		BuyerID:        event.BuyerID,
		SellerID:       event.SellerID,
		PreviousStatus: event.PreviousStatus,
		CurrentStatus:  event.CurrentStatus,
		Actor:          event.Actor,
		OccurredAt:     event.OccurredAt,
	})
}
