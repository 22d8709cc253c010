package query

import (
	"github.com/supplycore/fulfillment/internal/order/domain"
)

// GetOrderHandler handles get order query
type GetOrderHandler struct {
	repo domain.OrderRepository
}

// NewGetOrderHandler creates a new get order handler
func NewGetOrderHandler(repo domain.OrderRepository) *GetOrderHandler {
	return &GetOrderHandler{repo: repo}
}

// Handle executes the get order query
func (h *GetOrderHandler) Handle(id uint) (*domain.Order, error) {
	return h.repo.FindByID(id)
}
