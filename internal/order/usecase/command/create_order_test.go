package command

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/supplycore/fulfillment/internal/order/domain"
)

func testCatalog() *stubCatalog {
	return &stubCatalog{products: map[uint]*domain.CatalogProduct{
		1: {ID: 1, Name: "Widget", Price: decimal.NewFromFloat(10.50)},
		2: {ID: 2, Name: "Gadget", Price: decimal.NewFromFloat(4.25)},
	}}
}

func TestCreateOrder_SnapshotsCatalogPrices(t *testing.T) {
	store := newMemStore()
	h := NewCreateOrderHandler(&memOrderRepo{store: store}, testCatalog())

	order, err := h.Handle(context.Background(), CreateOrderCommand{
		BuyerID:  5,
		SellerID: 77,
		Lines: []CreateOrderLine{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.Status != domain.StatusPending {
		t.Errorf("expected new order pending, got %s", order.Status)
	}
	if !strings.HasPrefix(order.OrderNumber, "ORD-") {
		t.Errorf("unexpected order number %s", order.OrderNumber)
	}

	if len(order.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(order.Lines))
	}
	for i, l := range order.Lines {
		if l.LineNo != i+1 {
			t.Errorf("expected line %d numbered %d, got %d", i, i+1, l.LineNo)
		}
	}
	if !order.Lines[0].UnitPrice.Equal(decimal.NewFromFloat(10.50)) {
		t.Errorf("expected snapshotted price 10.50, got %s", order.Lines[0].UnitPrice)
	}
	if !order.TotalAmount.Equal(decimal.NewFromFloat(33.75)) {
		t.Errorf("expected total 33.75, got %s", order.TotalAmount)
	}

	if _, ok := store.orders[order.ID]; !ok {
		t.Error("order must be persisted")
	}
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	h := NewCreateOrderHandler(&memOrderRepo{store: newMemStore()}, testCatalog())

	_, err := h.Handle(context.Background(), CreateOrderCommand{BuyerID: 5, SellerID: 77})
	if !errors.Is(err, domain.ErrEmptyOrder) {
		t.Errorf("expected ErrEmptyOrder, got %v", err)
	}
}

func TestCreateOrder_MissingParties(t *testing.T) {
	h := NewCreateOrderHandler(&memOrderRepo{store: newMemStore()}, testCatalog())
	lines := []CreateOrderLine{{ProductID: 1, Quantity: 1}}

	if _, err := h.Handle(context.Background(), CreateOrderCommand{SellerID: 77, Lines: lines}); err == nil {
		t.Error("expected error for missing buyer")
	}
	if _, err := h.Handle(context.Background(), CreateOrderCommand{BuyerID: 5, Lines: lines}); err == nil {
		t.Error("expected error for missing seller")
	}
}

func TestCreateOrder_InvalidLines(t *testing.T) {
	store := newMemStore()
	h := NewCreateOrderHandler(&memOrderRepo{store: store}, testCatalog())

	cases := []struct {
		name  string
		lines []CreateOrderLine
	}{
		{"zero product id", []CreateOrderLine{{ProductID: 0, Quantity: 1}}},
		{"zero quantity", []CreateOrderLine{{ProductID: 1, Quantity: 0}}},
		{"negative quantity", []CreateOrderLine{{ProductID: 1, Quantity: -2}}},
		{"unknown product", []CreateOrderLine{{ProductID: 99, Quantity: 1}}},
	}

	for _, tc := range cases {
		_, err := h.Handle(context.Background(), CreateOrderCommand{
			BuyerID: 5, SellerID: 77, Lines: tc.lines,
		})
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
	if len(store.orders) != 0 {
		t.Errorf("rejected commands must not persist orders, found %d", len(store.orders))
	}
}
