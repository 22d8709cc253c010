package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestComputeTotal(t *testing.T) {
	order := &Order{
		Lines: []OrderLine{
			{LineNo: 1, QuantityOrdered: 2, UnitPrice: decimal.NewFromFloat(10.50)},
			{LineNo: 2, QuantityOrdered: 3, UnitPrice: decimal.NewFromFloat(4.25)},
		},
	}

	total := order.ComputeTotal()
	want := decimal.NewFromFloat(33.75)
	if !total.Equal(want) {
		t.Errorf("expected total %s, got %s", want, total)
	}
}

func TestComputeTotal_Empty(t *testing.T) {
	order := &Order{}
	if !order.ComputeTotal().Equal(decimal.Zero) {
		t.Errorf("expected zero total, got %s", order.ComputeTotal())
	}
}

func TestRecordShipment_Full(t *testing.T) {
	line := &OrderLine{LineNo: 1, QuantityOrdered: 10}

	if err := line.RecordShipment(10, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.QuantityShipped != 10 {
		t.Errorf("expected shipped 10, got %d", line.QuantityShipped)
	}
	if line.QuantityBackordered != 0 {
		t.Errorf("expected backordered 0, got %d", line.QuantityBackordered)
	}
	if line.ExpectedRestockAt != nil {
		t.Error("full shipment must not set a restock estimate")
	}
}

func TestRecordShipment_Partial(t *testing.T) {
	restock := time.Now().Add(72 * time.Hour)
	line := &OrderLine{LineNo: 1, QuantityOrdered: 10}

	if err := line.RecordShipment(6, &restock); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.QuantityShipped != 6 {
		t.Errorf("expected shipped 6, got %d", line.QuantityShipped)
	}
	if line.QuantityBackordered != 4 {
		t.Errorf("expected backordered 4, got %d", line.QuantityBackordered)
	}
	if line.ExpectedRestockAt == nil || !line.ExpectedRestockAt.Equal(restock) {
		t.Error("partial shipment must carry the restock estimate")
	}
	if line.QuantityShipped+line.QuantityBackordered != line.QuantityOrdered {
		t.Error("shipped + backordered must equal ordered")
	}
}

func TestRecordShipment_InvalidQuantities(t *testing.T) {
	for _, qty := range []int{0, -1, 11} {
		line := &OrderLine{LineNo: 1, QuantityOrdered: 10}
		err := line.RecordShipment(qty, nil)
		if !errors.Is(err, ErrInvalidShipment) {
			t.Errorf("quantity %d: expected ErrInvalidShipment, got %v", qty, err)
		}
		if line.QuantityShipped != 0 || line.QuantityBackordered != 0 {
			t.Errorf("quantity %d: rejected shipment must not mutate the line", qty)
		}
	}
}

func TestLineTotal_UsesPriceSnapshot(t *testing.T) {
	line := &OrderLine{QuantityOrdered: 4, UnitPrice: decimal.NewFromFloat(2.5)}
	if !line.LineTotal().Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected line total 10, got %s", line.LineTotal())
	}
}

func TestInsufficientInventoryError_Message(t *testing.T) {
	err := &InsufficientInventoryError{ProductIDs: []uint{3, 7}}
	if err.Error() != "insufficient inventory for products [3 7]" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}
