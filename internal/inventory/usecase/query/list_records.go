package query

import (
	"github.com/supplycore/fulfillment/internal/inventory/domain"
)

// ListRecordsQuery represents the query to list inventory records
type ListRecordsQuery struct {
	Limit  int
	Offset int
}

// ListRecordsHandler handles list records query
type ListRecordsHandler struct {
	repo domain.InventoryRepository
}

// NewListRecordsHandler creates a new list records handler
func NewListRecordsHandler(repo domain.InventoryRepository) *ListRecordsHandler {
	return &ListRecordsHandler{repo: repo}
}

// Handle executes the list records query
func (h *ListRecordsHandler) Handle(q ListRecordsQuery) ([]domain.InventoryRecord, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return h.repo.FindAll(q.Limit, q.Offset)
}
