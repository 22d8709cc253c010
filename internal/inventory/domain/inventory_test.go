package domain

import (
	"errors"
	"testing"
)

func TestReserve(t *testing.T) {
	r := &InventoryRecord{QuantityOnHand: 20, QuantityReserved: 5}

	if err := r.Reserve(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.QuantityReserved != 15 {
		t.Errorf("expected reserved 15, got %d", r.QuantityReserved)
	}
	if r.Available() != 5 {
		t.Errorf("expected available 5, got %d", r.Available())
	}
}

func TestReserve_InsufficientStock(t *testing.T) {
	r := &InventoryRecord{QuantityOnHand: 20, QuantityReserved: 15}

	err := r.Reserve(6)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}
	if r.QuantityReserved != 15 {
		t.Errorf("failed reserve must not mutate, reserved is %d", r.QuantityReserved)
	}
}

func TestReserve_InvalidQuantity(t *testing.T) {
	r := &InventoryRecord{QuantityOnHand: 20}
	for _, qty := range []int{0, -3} {
		if err := r.Reserve(qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("quantity %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
}

func TestRelease(t *testing.T) {
	r := &InventoryRecord{QuantityOnHand: 20, QuantityReserved: 10}

	if err := r.Release(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.QuantityReserved != 6 {
		t.Errorf("expected reserved 6, got %d", r.QuantityReserved)
	}
	if r.QuantityOnHand != 20 {
		t.Errorf("release must not touch on-hand, got %d", r.QuantityOnHand)
	}
}

func TestRelease_ClampsToReserved(t *testing.T) {
	r := &InventoryRecord{QuantityOnHand: 20, QuantityReserved: 3}

	if err := r.Release(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.QuantityReserved != 0 {
		t.Errorf("expected reserved clamped to 0, got %d", r.QuantityReserved)
	}
}

func TestDeduct(t *testing.T) {
	r := &InventoryRecord{QuantityOnHand: 20, QuantityReserved: 10}

	if err := r.Deduct(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.QuantityOnHand != 10 {
		t.Errorf("expected on-hand 10, got %d", r.QuantityOnHand)
	}
	if r.QuantityReserved != 0 {
		t.Errorf("expected reserved 0, got %d", r.QuantityReserved)
	}
}

func TestDeduct_MoreThanReserved(t *testing.T) {
	r := &InventoryRecord{QuantityOnHand: 20, QuantityReserved: 5}

	err := r.Deduct(6)
	if !errors.Is(err, ErrInsufficientReserved) {
		t.Errorf("expected ErrInsufficientReserved, got %v", err)
	}
	if r.QuantityOnHand != 20 || r.QuantityReserved != 5 {
		t.Error("failed deduct must not mutate the record")
	}
}

func TestAdd(t *testing.T) {
	r := &InventoryRecord{QuantityOnHand: 3, QuantityReserved: 3}

	if err := r.Add(7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.QuantityOnHand != 10 {
		t.Errorf("expected on-hand 10, got %d", r.QuantityOnHand)
	}
	if r.Available() != 7 {
		t.Errorf("expected available 7, got %d", r.Available())
	}
}

func TestInvariant_ReserveDeductReleaseCycle(t *testing.T) {
	r := &InventoryRecord{QuantityOnHand: 20}

	if err := r.Reserve(10); err != nil {
		t.Fatal(err)
	}
	if err := r.Deduct(6); err != nil {
		t.Fatal(err)
	}
	if err := r.Release(4); err != nil {
		t.Fatal(err)
	}

	if r.QuantityOnHand != 14 {
		t.Errorf("expected on-hand 14, got %d", r.QuantityOnHand)
	}
	if r.QuantityReserved != 0 {
		t.Errorf("expected reserved 0, got %d", r.QuantityReserved)
	}
	if r.QuantityReserved > r.QuantityOnHand || r.QuantityReserved < 0 {
		t.Error("ledger invariant violated")
	}
}
