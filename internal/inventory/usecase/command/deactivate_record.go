package command

import (
	"fmt"

	"github.com/supplycore/fulfillment/internal/inventory/domain"
)

// DeactivateRecordCommand represents the command to soft-disable a ledger row
type DeactivateRecordCommand struct {
	RecordID uint
}

// DeactivateRecordHandler handles deactivate record command
type DeactivateRecordHandler struct {
	repo domain.InventoryRepository
}

// NewDeactivateRecordHandler creates a new deactivate record handler
func NewDeactivateRecordHandler(repo domain.InventoryRepository) *DeactivateRecordHandler {
	return &DeactivateRecordHandler{repo: repo}
}

// Handle executes the deactivate record command
func (h *DeactivateRecordHandler) Handle(cmd DeactivateRecordCommand) error {
	if cmd.RecordID == 0 {
		return fmt.Errorf("record_id is required")
	}

	record, err := h.repo.FindByID(cmd.RecordID)
	if err != nil {
		return err
	}

	// Never retire a row while stock is still promised to open orders
	if record.QuantityReserved > 0 {
		return fmt.Errorf("record has %d reserved units outstanding", record.QuantityReserved)
	}

	if err := h.repo.Deactivate(cmd.RecordID); err != nil {
		return fmt.Errorf("failed to deactivate record: %w", err)
	}

	return nil
}
