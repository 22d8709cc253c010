package query

import (
	"fmt"

	"github.com/supplycore/fulfillment/internal/inventory/domain"
)

// GetRecordQuery represents the query to get an inventory record
type GetRecordQuery struct {
	RecordID uint
}

// GetRecordHandler handles get record query
type GetRecordHandler struct {
	repo domain.InventoryRepository
}

// NewGetRecordHandler creates a new get record handler
func NewGetRecordHandler(repo domain.InventoryRepository) *GetRecordHandler {
	return &GetRecordHandler{repo: repo}
}

// Handle executes the get record query
func (h *GetRecordHandler) Handle(q GetRecordQuery) (*domain.InventoryRecord, error) {
	if q.RecordID == 0 {
		return nil, fmt.Errorf("record_id is required")
	}
	return h.repo.FindByID(q.RecordID)
}
