package query

import (
	"fmt"

	"github.com/supplycore/fulfillment/internal/order/domain"
)

// ListOrdersQuery represents the query to list orders
type ListOrdersQuery struct {
	BuyerID  *uint
	SellerID *uint
	Status   *domain.OrderStatus
	Limit    int
	Offset   int
}

// ListOrdersHandler handles list orders query
type ListOrdersHandler struct {
	repo domain.OrderRepository
}

// NewListOrdersHandler creates a new list orders handler
func NewListOrdersHandler(repo domain.OrderRepository) *ListOrdersHandler {
	return &ListOrdersHandler{repo: repo}
}

// Handle executes the list orders query
func (h *ListOrdersHandler) Handle(q ListOrdersQuery) ([]domain.Order, error) {
	if q.Status != nil && !domain.ValidStatus(*q.Status) {
		return nil, fmt.Errorf("unknown status %q", *q.Status)
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return h.repo.FindAll(domain.OrderFilter{
		BuyerID:  q.BuyerID,
		SellerID: q.SellerID,
		Status:   q.Status,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
}
