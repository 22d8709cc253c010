package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/supplycore/fulfillment/internal/order/domain"
)

// CreateOrderLine is one requested position on a new order
type CreateOrderLine struct {
	ProductID uint
	Quantity  int
}

// CreateOrderCommand represents a buyer checking out a non-empty cart
type CreateOrderCommand struct {
	BuyerID  uint
	SellerID uint
	Lines    []CreateOrderLine
}

// CreateOrderHandler creates the order aggregate with unit prices
// snapshotted from the external catalog. No inventory is touched here;
// stock is only promised when the seller accepts.
type CreateOrderHandler struct {
	repo    domain.OrderRepository
	catalog domain.ProductCatalog
}

// NewCreateOrderHandler creates a new create order handler
func NewCreateOrderHandler(repo domain.OrderRepository, catalog domain.ProductCatalog) *CreateOrderHandler {
	return &CreateOrderHandler{repo: repo, catalog: catalog}
}

// Handle executes the create order command
func (h *CreateOrderHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if cmd.BuyerID == 0 {
		return nil, fmt.Errorf("buyer_id is required")
	}
	if cmd.SellerID == 0 {
		return nil, fmt.Errorf("seller_id is required")
	}
	if len(cmd.Lines) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	order := &domain.Order{
		OrderNumber: fmt.Sprintf("ORD-%s", uuid.New().String()[:8]),
		BuyerID:     cmd.BuyerID,
		SellerID:    cmd.SellerID,
		Status:      domain.StatusPending,
	}

	for i, l := range cmd.Lines {
		if l.ProductID == 0 {
			return nil, fmt.Errorf("line %d: product_id is required", i+1)
		}
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("line %d: quantity must be positive", i+1)
		}

		product, err := h.catalog.GetProduct(ctx, l.ProductID)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}

		order.Lines = append(order.Lines, domain.OrderLine{
			LineNo:              i + 1,
			ProductID:           l.ProductID,
			QuantityOrdered:     l.Quantity,
			UnitPrice:           product.Price,
			QuantityBackordered: 0,
		})
	}

	order.TotalAmount = order.ComputeTotal()

	if err := h.repo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}
