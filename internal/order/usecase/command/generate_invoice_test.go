package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/supplycore/fulfillment/internal/order/domain"
)

func TestGenerateInvoice_RequiresDeliveredOrder(t *testing.T) {
	store := newMemStore()
	order := seedOrder(store, domain.StatusDispatched, line(1, 1, 10, 100))

	h := NewGenerateInvoiceHandler(newMemUnitOfWork(store), DefaultInvoiceConfig())

	_, err := h.Handle(context.Background(), order.ID)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if len(store.invoices) != 0 {
		t.Error("no invoice may exist before delivery")
	}
}

func TestGenerateInvoice_Amounts(t *testing.T) {
	store := newMemStore()
	order := seedOrder(store, domain.StatusDelivered,
		line(1, 1, 2, 10.50),
		line(2, 2, 3, 4.25),
	)

	uow := newMemUnitOfWork(store)
	h := NewGenerateInvoiceHandler(uow, InvoiceConfig{
		TaxRate: decimal.NewFromFloat(0.18),
		DueDays: 30,
	})

	invoice, err := h.Handle(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !invoice.Subtotal.Equal(decimal.NewFromFloat(33.75)) {
		t.Errorf("expected subtotal 33.75, got %s", invoice.Subtotal)
	}
	if !invoice.TaxAmount.Equal(decimal.NewFromFloat(6.075)) {
		t.Errorf("expected tax 6.075, got %s", invoice.TaxAmount)
	}
	if !invoice.Total.Equal(decimal.NewFromFloat(39.825)) {
		t.Errorf("expected total 39.825, got %s", invoice.Total)
	}

	wantNumber := domain.InvoiceNumberFor(order.ID, invoice.IssuedAt)
	if invoice.InvoiceNumber != wantNumber {
		t.Errorf("expected invoice number %s, got %s", wantNumber, invoice.InvoiceNumber)
	}

	wantDue := invoice.IssuedAt.AddDate(0, 0, 30)
	if !invoice.DueAt.Equal(wantDue) {
		t.Errorf("expected due at %s, got %s", wantDue, invoice.DueAt)
	}
}

func TestGenerateInvoice_Idempotent(t *testing.T) {
	store := newMemStore()
	order := seedOrder(store, domain.StatusDelivered, line(1, 1, 10, 100))

	uow := newMemUnitOfWork(store)
	h := NewGenerateInvoiceHandler(uow, DefaultInvoiceConfig())

	first, err := h.Handle(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}

	time.Sleep(time.Millisecond)

	second, err := h.Handle(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if second.InvoiceNumber != first.InvoiceNumber {
		t.Errorf("repeat call returned a different invoice: %s vs %s",
			second.InvoiceNumber, first.InvoiceNumber)
	}
	if !second.IssuedAt.Equal(first.IssuedAt) {
		t.Error("repeat call must not re-issue the invoice")
	}
	if len(uow.store.invoices) != 1 {
		t.Fatalf("expected exactly 1 invoice, got %d", len(uow.store.invoices))
	}
}

func TestGenerateInvoice_DuplicateInsertRaceReturnsWinner(t *testing.T) {
	store := newMemStore()
	order := seedOrder(store, domain.StatusDelivered, line(1, 1, 10, 100))

	// Pre-existing row simulates a concurrent writer that won the insert race
	winner := &domain.Invoice{
		OrderID:       order.ID,
		InvoiceNumber: "INV-20260101-000001",
		Subtotal:      decimal.NewFromInt(1000),
		TaxAmount:     decimal.NewFromInt(180),
		Total:         decimal.NewFromInt(1180),
		IssuedAt:      time.Now().Add(-time.Minute),
	}
	store.invoices[order.ID] = winner

	h := NewGenerateInvoiceHandler(newMemUnitOfWork(store), DefaultInvoiceConfig())

	invoice, err := h.Handle(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invoice.InvoiceNumber != winner.InvoiceNumber {
		t.Errorf("expected the winning row, got %s", invoice.InvoiceNumber)
	}
}

func TestGenerateInvoice_OrderNotFound(t *testing.T) {
	h := NewGenerateInvoiceHandler(newMemUnitOfWork(newMemStore()), DefaultInvoiceConfig())

	_, err := h.Handle(context.Background(), 42)
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}
