package command

import (
	"fmt"

	"github.com/supplycore/fulfillment/internal/inventory/domain"
)

// RestockCommand represents the command to add on-hand stock, independent of
// any order
type RestockCommand struct {
	ProductID uint
	HolderID  uint
	Quantity  int
}

// RestockHandler handles restock command
type RestockHandler struct {
	repo domain.InventoryRepository
}

// NewRestockHandler creates a new restock handler
func NewRestockHandler(repo domain.InventoryRepository) *RestockHandler {
	return &RestockHandler{repo: repo}
}

// Handle executes the restock command
func (h *RestockHandler) Handle(cmd RestockCommand) (*domain.InventoryRecord, error) {
	if cmd.ProductID == 0 {
		return nil, fmt.Errorf("product_id is required")
	}
	if cmd.HolderID == 0 {
		return nil, fmt.Errorf("holder_id is required")
	}
	if cmd.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	record, err := h.repo.Add(cmd.ProductID, cmd.HolderID, cmd.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to restock: %w", err)
	}

	return record, nil
}
