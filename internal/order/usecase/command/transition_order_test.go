package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/supplycore/fulfillment/internal/order/domain"
)

const testSellerID = uint(77)

func seedOrder(store *memStore, status domain.OrderStatus, lines ...domain.OrderLine) *domain.Order {
	order := &domain.Order{
		OrderNumber: "ORD-test0001",
		BuyerID:     5,
		SellerID:    testSellerID,
		Status:      status,
		Lines:       lines,
	}
	order.TotalAmount = order.ComputeTotal()
	return store.addOrder(order)
}

func line(lineNo int, productID uint, qty int, price float64) domain.OrderLine {
	return domain.OrderLine{
		LineNo:          lineNo,
		ProductID:       productID,
		QuantityOrdered: qty,
		UnitPrice:       decimal.NewFromFloat(price),
	}
}

func TestTransition_AcceptReservesStock(t *testing.T) {
	store := newMemStore()
	store.addInventory(1, testSellerID, 20, 0)
	order := seedOrder(store, domain.StatusPending, line(1, 1, 10, 100))

	uow := newMemUnitOfWork(store)
	publisher := &recordingPublisher{}
	h := NewTransitionOrderHandler(uow, publisher, nil, DefaultInvoiceConfig())

	updated, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusAccepted,
		Actor:   "seller:77",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.StatusAccepted {
		t.Errorf("expected status accepted, got %s", updated.Status)
	}

	record := uow.store.inventory[ledgerKey{1, testSellerID}]
	if record.QuantityOnHand != 20 || record.QuantityReserved != 10 {
		t.Errorf("expected ledger (20,10), got (%d,%d)", record.QuantityOnHand, record.QuantityReserved)
	}

	if len(uow.store.audits) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(uow.store.audits))
	}
	entry := uow.store.audits[0]
	if entry.FromStatus != domain.StatusPending || entry.ToStatus != domain.StatusAccepted {
		t.Errorf("audit recorded %s -> %s", entry.FromStatus, entry.ToStatus)
	}
	if entry.Actor != "seller:77" {
		t.Errorf("expected actor seller:77, got %s", entry.Actor)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.PreviousStatus != "pending" || event.CurrentStatus != "accepted" {
		t.Errorf("event carried %s -> %s", event.PreviousStatus, event.CurrentStatus)
	}
}

func TestTransition_AcceptInsufficientStockRollsBackWholeOrder(t *testing.T) {
	store := newMemStore()
	store.addInventory(1, testSellerID, 20, 0)
	store.addInventory(2, testSellerID, 3, 0)
	order := seedOrder(store, domain.StatusPending,
		line(1, 1, 10, 100),
		line(2, 2, 5, 50),
	)

	uow := newMemUnitOfWork(store)
	h := NewTransitionOrderHandler(uow, nil, nil, DefaultInvoiceConfig())

	_, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusAccepted,
	})

	var insufficient *domain.InsufficientInventoryError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientInventoryError, got %v", err)
	}
	if len(insufficient.ProductIDs) != 1 || insufficient.ProductIDs[0] != 2 {
		t.Errorf("expected failing product [2], got %v", insufficient.ProductIDs)
	}

	// First line's reservation must be rolled back with the transaction
	first := uow.store.inventory[ledgerKey{1, testSellerID}]
	if first.QuantityReserved != 0 {
		t.Errorf("expected first product reservation reverted, got %d", first.QuantityReserved)
	}
	if uow.store.orders[order.ID].Status != domain.StatusPending {
		t.Errorf("order status must stay pending, got %s", uow.store.orders[order.ID].Status)
	}
	if len(uow.store.audits) != 0 {
		t.Errorf("failed transition must not append audit entries, got %d", len(uow.store.audits))
	}
}

func TestTransition_FullDispatchAndDelivery(t *testing.T) {
	store := newMemStore()
	store.addInventory(1, testSellerID, 20, 10)
	order := seedOrder(store, domain.StatusPacked, line(1, 1, 10, 100))

	uow := newMemUnitOfWork(store)
	h := NewTransitionOrderHandler(uow, nil, nil, DefaultInvoiceConfig())

	updated, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusDispatched,
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	record := uow.store.inventory[ledgerKey{1, testSellerID}]
	if record.QuantityOnHand != 10 || record.QuantityReserved != 0 {
		t.Errorf("expected ledger (10,0), got (%d,%d)", record.QuantityOnHand, record.QuantityReserved)
	}
	if updated.Lines[0].QuantityShipped != 10 || updated.Lines[0].QuantityBackordered != 0 {
		t.Errorf("expected line fully shipped, got shipped=%d backordered=%d",
			updated.Lines[0].QuantityShipped, updated.Lines[0].QuantityBackordered)
	}

	// Delivery generates the invoice in the same transaction
	if _, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusDelivered,
	}); err != nil {
		t.Fatalf("delivery failed: %v", err)
	}

	invoice, ok := uow.store.invoices[order.ID]
	if !ok {
		t.Fatal("expected invoice generated at delivery")
	}
	if !invoice.Subtotal.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected subtotal 1000, got %s", invoice.Subtotal)
	}
	if !invoice.TaxAmount.Equal(decimal.NewFromInt(180)) {
		t.Errorf("expected tax 180, got %s", invoice.TaxAmount)
	}
	if !invoice.Total.Equal(decimal.NewFromInt(1180)) {
		t.Errorf("expected total 1180, got %s", invoice.Total)
	}
}

func TestTransition_PartialShipmentBackorders(t *testing.T) {
	store := newMemStore()
	store.addInventory(1, testSellerID, 20, 10)
	order := seedOrder(store, domain.StatusPacked, line(1, 1, 10, 100))

	uow := newMemUnitOfWork(store)
	h := NewTransitionOrderHandler(uow, nil, nil, DefaultInvoiceConfig())

	restock := time.Now().Add(48 * time.Hour)
	updated, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusDispatched,
		Shipments: []LineShipment{
			{LineNo: 1, Quantity: 6, ExpectedRestockAt: &restock},
		},
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	// 6 deducted, 4 released back to the open pool
	record := uow.store.inventory[ledgerKey{1, testSellerID}]
	if record.QuantityOnHand != 14 || record.QuantityReserved != 0 {
		t.Errorf("expected ledger (14,0), got (%d,%d)", record.QuantityOnHand, record.QuantityReserved)
	}

	shipped := updated.Lines[0]
	if shipped.QuantityShipped != 6 || shipped.QuantityBackordered != 4 {
		t.Errorf("expected line (6,4), got (%d,%d)", shipped.QuantityShipped, shipped.QuantityBackordered)
	}
	if shipped.ExpectedRestockAt == nil {
		t.Error("backordered line must carry the restock estimate")
	}
}

func TestTransition_DispatchRejectsBadShipments(t *testing.T) {
	store := newMemStore()
	store.addInventory(1, testSellerID, 20, 10)
	order := seedOrder(store, domain.StatusPacked, line(1, 1, 10, 100))

	uow := newMemUnitOfWork(store)
	h := NewTransitionOrderHandler(uow, nil, nil, DefaultInvoiceConfig())

	cases := []struct {
		name      string
		shipments []LineShipment
	}{
		{"unknown line", []LineShipment{{LineNo: 9, Quantity: 1}}},
		{"duplicate line", []LineShipment{{LineNo: 1, Quantity: 2}, {LineNo: 1, Quantity: 3}}},
		{"zero quantity", []LineShipment{{LineNo: 1, Quantity: 0}}},
		{"over ordered", []LineShipment{{LineNo: 1, Quantity: 11}}},
	}

	for _, tc := range cases {
		_, err := h.Handle(context.Background(), TransitionOrderCommand{
			OrderID:   order.ID,
			Target:    domain.StatusDispatched,
			Shipments: tc.shipments,
		})
		if !errors.Is(err, domain.ErrInvalidShipment) {
			t.Errorf("%s: expected ErrInvalidShipment, got %v", tc.name, err)
		}
		if uow.store.orders[order.ID].Status != domain.StatusPacked {
			t.Errorf("%s: order must stay packed", tc.name)
		}
	}
}

func TestTransition_CancelReleasesOutstandingReservation(t *testing.T) {
	store := newMemStore()
	store.addInventory(1, testSellerID, 20, 10)
	order := seedOrder(store, domain.StatusAccepted, line(1, 1, 10, 100))

	uow := newMemUnitOfWork(store)
	h := NewTransitionOrderHandler(uow, nil, nil, DefaultInvoiceConfig())

	if _, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusCancelled,
		Actor:   "buyer:5",
	}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	record := uow.store.inventory[ledgerKey{1, testSellerID}]
	if record.QuantityOnHand != 20 || record.QuantityReserved != 0 {
		t.Errorf("expected ledger (20,0), got (%d,%d)", record.QuantityOnHand, record.QuantityReserved)
	}
}

func TestTransition_CancelFromPendingTouchesNoInventory(t *testing.T) {
	store := newMemStore()
	store.addInventory(1, testSellerID, 20, 4)
	order := seedOrder(store, domain.StatusPending, line(1, 1, 10, 100))

	uow := newMemUnitOfWork(store)
	h := NewTransitionOrderHandler(uow, nil, nil, DefaultInvoiceConfig())

	if _, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusCancelled,
	}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	record := uow.store.inventory[ledgerKey{1, testSellerID}]
	if record.QuantityReserved != 4 {
		t.Errorf("pending cancel must not touch reservations, got %d", record.QuantityReserved)
	}
	if len(uow.lockCalls) != 0 {
		t.Errorf("pending cancel must not lock the ledger, locked %d times", len(uow.lockCalls))
	}
}

func TestTransition_InvalidTransitionLeavesStateUntouched(t *testing.T) {
	store := newMemStore()
	store.addInventory(1, testSellerID, 20, 0)
	order := seedOrder(store, domain.StatusPending, line(1, 1, 10, 100))

	uow := newMemUnitOfWork(store)
	publisher := &recordingPublisher{}
	h := NewTransitionOrderHandler(uow, publisher, nil, DefaultInvoiceConfig())

	_, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusDelivered,
	})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if uow.store.orders[order.ID].Status != domain.StatusPending {
		t.Error("order must stay pending")
	}
	if len(uow.store.audits) != 0 || len(publisher.events) != 0 {
		t.Error("rejected transition must leave no trace")
	}
}

func TestTransition_UnknownStatus(t *testing.T) {
	store := newMemStore()
	order := seedOrder(store, domain.StatusPending, line(1, 1, 10, 100))

	h := NewTransitionOrderHandler(newMemUnitOfWork(store), nil, nil, DefaultInvoiceConfig())

	_, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.OrderStatus("shipped"),
	})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTransition_RetriesSerializationConflicts(t *testing.T) {
	store := newMemStore()
	store.addInventory(1, testSellerID, 20, 0)
	order := seedOrder(store, domain.StatusPending, line(1, 1, 10, 100))

	uow := newMemUnitOfWork(store)
	uow.conflictsLeft = 2
	h := NewTransitionOrderHandler(uow, nil, nil, DefaultInvoiceConfig())

	updated, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusAccepted,
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if updated.Status != domain.StatusAccepted {
		t.Errorf("expected accepted, got %s", updated.Status)
	}
}

func TestTransition_ExhaustedRetriesReturnBusy(t *testing.T) {
	store := newMemStore()
	store.addInventory(1, testSellerID, 20, 0)
	order := seedOrder(store, domain.StatusPending, line(1, 1, 10, 100))

	uow := newMemUnitOfWork(store)
	uow.conflictsLeft = 3
	h := NewTransitionOrderHandler(uow, nil, nil, DefaultInvoiceConfig())

	_, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusAccepted,
	})
	if !errors.Is(err, domain.ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
}

func TestTransition_LocksLedgerInAscendingProductOrder(t *testing.T) {
	store := newMemStore()
	store.addInventory(5, testSellerID, 20, 0)
	store.addInventory(2, testSellerID, 20, 0)
	store.addInventory(9, testSellerID, 20, 0)
	order := seedOrder(store, domain.StatusPending,
		line(1, 5, 1, 10),
		line(2, 2, 1, 10),
		line(3, 9, 1, 10),
	)

	uow := newMemUnitOfWork(store)
	h := NewTransitionOrderHandler(uow, nil, nil, DefaultInvoiceConfig())

	if _, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusAccepted,
	}); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	if len(uow.lockCalls) != 1 {
		t.Fatalf("expected 1 lock call, got %d", len(uow.lockCalls))
	}
	locked := uow.lockCalls[0]
	want := []uint{2, 5, 9}
	for i := range want {
		if locked[i] != want[i] {
			t.Fatalf("expected lock order %v, got %v", want, locked)
		}
	}
}

func TestTransition_PublishFailureDoesNotFailTransition(t *testing.T) {
	store := newMemStore()
	store.addInventory(1, testSellerID, 20, 0)
	order := seedOrder(store, domain.StatusPending, line(1, 1, 10, 100))

	uow := newMemUnitOfWork(store)
	publisher := &recordingPublisher{err: errors.New("broker down")}
	h := NewTransitionOrderHandler(uow, publisher, nil, DefaultInvoiceConfig())

	updated, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusAccepted,
	})
	if err != nil {
		t.Fatalf("transition must not fail on publish error: %v", err)
	}
	if updated.Status != domain.StatusAccepted {
		t.Errorf("expected accepted, got %s", updated.Status)
	}
}

func TestTransition_EvictsCachedAvailability(t *testing.T) {
	store := newMemStore()
	store.addInventory(1, testSellerID, 20, 0)
	store.addInventory(2, testSellerID, 20, 0)
	order := seedOrder(store, domain.StatusPending,
		line(1, 1, 5, 100),
		line(2, 2, 3, 50),
	)

	uow := newMemUnitOfWork(store)
	evictor := &recordingEvictor{}
	h := NewTransitionOrderHandler(uow, nil, evictor, DefaultInvoiceConfig())

	if _, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusAccepted,
	}); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	want := [][2]uint{{1, testSellerID}, {2, testSellerID}}
	if len(evictor.pairs) != len(want) {
		t.Fatalf("expected %d evictions, got %d", len(want), len(evictor.pairs))
	}
	for i := range want {
		if evictor.pairs[i] != want[i] {
			t.Errorf("expected eviction %v, got %v", want[i], evictor.pairs[i])
		}
	}
}

func TestTransition_NoEvictionWithoutInventoryMovement(t *testing.T) {
	store := newMemStore()
	store.addInventory(1, testSellerID, 20, 0)
	order := seedOrder(store, domain.StatusPending, line(1, 1, 10, 100))

	uow := newMemUnitOfWork(store)
	evictor := &recordingEvictor{}
	h := NewTransitionOrderHandler(uow, nil, evictor, DefaultInvoiceConfig())

	// Cancel from pending moves no stock
	if _, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusCancelled,
	}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if len(evictor.pairs) != 0 {
		t.Errorf("pending cancel must not evict, got %v", evictor.pairs)
	}
}

func TestTransition_NoEvictionOnFailedTransition(t *testing.T) {
	store := newMemStore()
	store.addInventory(1, testSellerID, 3, 0)
	order := seedOrder(store, domain.StatusPending, line(1, 1, 10, 100))

	uow := newMemUnitOfWork(store)
	evictor := &recordingEvictor{}
	h := NewTransitionOrderHandler(uow, nil, evictor, DefaultInvoiceConfig())

	if _, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: order.ID,
		Target:  domain.StatusAccepted,
	}); err == nil {
		t.Fatal("expected insufficient stock")
	}
	if len(evictor.pairs) != 0 {
		t.Errorf("aborted transition must not evict, got %v", evictor.pairs)
	}
}

func TestTransition_ConcurrentAcceptsOneWins(t *testing.T) {
	store := newMemStore()
	store.addInventory(1, testSellerID, 10, 0)
	first := seedOrder(store, domain.StatusPending, line(1, 1, 8, 100))
	second := seedOrder(store, domain.StatusPending, line(1, 1, 8, 100))

	uow := newMemUnitOfWork(store)
	h := NewTransitionOrderHandler(uow, nil, nil, DefaultInvoiceConfig())

	results := make(chan error, 2)
	for _, id := range []uint{first.ID, second.ID} {
		go func(orderID uint) {
			_, err := h.Handle(context.Background(), TransitionOrderCommand{
				OrderID: orderID,
				Target:  domain.StatusAccepted,
			})
			results <- err
		}(id)
	}

	var succeeded, rejected int
	for i := 0; i < 2; i++ {
		err := <-results
		switch {
		case err == nil:
			succeeded++
		default:
			var insufficient *domain.InsufficientInventoryError
			if !errors.As(err, &insufficient) {
				t.Fatalf("expected InsufficientInventoryError, got %v", err)
			}
			rejected++
		}
	}

	if succeeded != 1 || rejected != 1 {
		t.Fatalf("expected exactly one winner, got %d successes and %d rejections", succeeded, rejected)
	}

	record := uow.store.inventory[ledgerKey{1, testSellerID}]
	if record.QuantityOnHand != 10 || record.QuantityReserved != 8 {
		t.Errorf("expected ledger (10,8), got (%d,%d)", record.QuantityOnHand, record.QuantityReserved)
	}
}

func TestTransition_OrderNotFound(t *testing.T) {
	h := NewTransitionOrderHandler(newMemUnitOfWork(newMemStore()), nil, nil, DefaultInvoiceConfig())

	_, err := h.Handle(context.Background(), TransitionOrderCommand{
		OrderID: 42,
		Target:  domain.StatusAccepted,
	})
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}
