package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/supplycore/fulfillment/internal/order/domain"
	"github.com/supplycore/fulfillment/internal/order/repository"
)

// InvoiceConfig carries the financial knobs for invoice generation
type InvoiceConfig struct {
	TaxRate decimal.Decimal
	DueDays int
}

// DefaultInvoiceConfig returns the default tax rate and payment terms
func DefaultInvoiceConfig() InvoiceConfig {
	return InvoiceConfig{
		TaxRate: decimal.NewFromFloat(0.18),
		DueDays: 30,
	}
}

// GenerateInvoiceHandler creates the invoice for a delivered order exactly
// once. Safe to call any number of times: the order id is the idempotency
// key, and a lost insert race is resolved by returning the winning row.
type GenerateInvoiceHandler struct {
	uow domain.UnitOfWork
	cfg InvoiceConfig
}

// NewGenerateInvoiceHandler creates a new generate invoice handler
func NewGenerateInvoiceHandler(uow domain.UnitOfWork, cfg InvoiceConfig) *GenerateInvoiceHandler {
	return &GenerateInvoiceHandler{uow: uow, cfg: cfg}
}

// Handle returns the order's invoice, generating it if absent
func (h *GenerateInvoiceHandler) Handle(ctx context.Context, orderID uint) (*domain.Invoice, error) {
	if orderID == 0 {
		return nil, fmt.Errorf("order_id is required")
	}

	var invoice *domain.Invoice
	err := h.uow.Do(ctx, func(tx domain.TxRepos) error {
		order, err := tx.Orders().FindByID(orderID)
		if err != nil {
			return err
		}
		invoice, err = generateIfAbsent(tx, order, h.cfg, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// generateIfAbsent is the single invoice-creation path, shared by the direct
// endpoint and the delivery transition. Runs inside the caller's transaction.
func generateIfAbsent(tx domain.TxRepos, order *domain.Order, cfg InvoiceConfig, now time.Time) (*domain.Invoice, error) {
	existing, err := tx.Invoices().FindByOrderID(order.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrInvoiceNotFound) {
		return nil, err
	}

	if order.Status != domain.StatusDelivered {
		return nil, fmt.Errorf("%w: invoice requires a delivered order, status is %q",
			domain.ErrInvalidTransition, order.Status)
	}

	subtotal := order.ComputeTotal()
	taxAmount := subtotal.Mul(cfg.TaxRate).Round(4)

	invoice := &domain.Invoice{
		OrderID:       order.ID,
		InvoiceNumber: domain.InvoiceNumberFor(order.ID, now),
		Subtotal:      subtotal,
		TaxRate:       cfg.TaxRate,
		TaxAmount:     taxAmount,
		Total:         subtotal.Add(taxAmount),
		IssuedAt:      now,
		DueAt:         now.AddDate(0, 0, cfg.DueDays),
	}

	if err := tx.Invoices().Create(invoice); err != nil {
		// Concurrent generation race: the unique index on order_id decides
		// the winner; return that row instead of erroring.
		if repository.IsUniqueViolation(err) {
			return tx.Invoices().FindByOrderID(order.ID)
		}
		return nil, err
	}

	return invoice, nil
}
