package command

import (
	"fmt"

	"github.com/supplycore/fulfillment/internal/inventory/domain"
)

// CreateRecordCommand represents the command to open a ledger row for a
// product a holder begins stocking
type CreateRecordCommand struct {
	ProductID      uint
	HolderID       uint
	QuantityOnHand int
}

// CreateRecordHandler handles create record command
type CreateRecordHandler struct {
	repo domain.InventoryRepository
}

// NewCreateRecordHandler creates a new create record handler
func NewCreateRecordHandler(repo domain.InventoryRepository) *CreateRecordHandler {
	return &CreateRecordHandler{repo: repo}
}

// Handle executes the create record command
func (h *CreateRecordHandler) Handle(cmd CreateRecordCommand) (*domain.InventoryRecord, error) {
	if cmd.ProductID == 0 {
		return nil, fmt.Errorf("product_id is required")
	}
	if cmd.HolderID == 0 {
		return nil, fmt.Errorf("holder_id is required")
	}
	if cmd.QuantityOnHand < 0 {
		return nil, fmt.Errorf("quantity_on_hand cannot be negative")
	}

	record := &domain.InventoryRecord{
		ProductID:      cmd.ProductID,
		HolderID:       cmd.HolderID,
		QuantityOnHand: cmd.QuantityOnHand,
	}

	if err := h.repo.Create(record); err != nil {
		return nil, fmt.Errorf("failed to create inventory record: %w", err)
	}

	return record, nil
}
