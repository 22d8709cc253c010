package query

import (
	"github.com/supplycore/fulfillment/internal/order/domain"
)

// GetAuditTrailHandler handles the audit trail query
type GetAuditTrailHandler struct {
	orders domain.OrderRepository
	audit  domain.AuditRepository
}

// NewGetAuditTrailHandler creates a new audit trail handler
func NewGetAuditTrailHandler(orders domain.OrderRepository, audit domain.AuditRepository) *GetAuditTrailHandler {
	return &GetAuditTrailHandler{orders: orders, audit: audit}
}

// Handle returns the order's transition history, oldest first
func (h *GetAuditTrailHandler) Handle(orderID uint) ([]domain.AuditEntry, error) {
	if _, err := h.orders.FindByID(orderID); err != nil {
		return nil, err
	}
	return h.audit.ListByOrder(orderID)
}
