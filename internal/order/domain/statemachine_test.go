package domain

import "testing"

func TestCanTransition_AllowedMoves(t *testing.T) {
	allowed := []struct {
		from OrderStatus
		to   OrderStatus
	}{
		{StatusPending, StatusAccepted},
		{StatusPending, StatusRejected},
		{StatusPending, StatusCancelled},
		{StatusAccepted, StatusPacked},
		{StatusAccepted, StatusCancelled},
		{StatusPacked, StatusDispatched},
		{StatusPacked, StatusCancelled},
		{StatusDispatched, StatusDelivered},
	}

	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}
}

func TestCanTransition_ForbiddenMoves(t *testing.T) {
	forbidden := []struct {
		from OrderStatus
		to   OrderStatus
	}{
		{StatusPending, StatusPacked},
		{StatusPending, StatusDispatched},
		{StatusPending, StatusDelivered},
		{StatusAccepted, StatusRejected},
		{StatusAccepted, StatusDispatched},
		{StatusPacked, StatusAccepted},
		{StatusDispatched, StatusCancelled},
		{StatusDispatched, StatusPacked},
		{StatusDelivered, StatusDispatched},
	}

	for _, tc := range forbidden {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be forbidden", tc.from, tc.to)
		}
	}
}

func TestCanTransition_SelfTransition(t *testing.T) {
	for status := range statusTransitions {
		if CanTransition(status, status) {
			t.Errorf("expected %s -> %s to be forbidden", status, status)
		}
	}
}

func TestCanTransition_TerminalStatesHaveNoExits(t *testing.T) {
	terminal := []OrderStatus{StatusRejected, StatusDelivered, StatusCancelled}
	all := []OrderStatus{
		StatusPending, StatusAccepted, StatusRejected, StatusPacked,
		StatusDispatched, StatusDelivered, StatusCancelled,
	}

	for _, from := range terminal {
		if !IsTerminal(from) {
			t.Errorf("expected %s to be terminal", from)
		}
		for _, to := range all {
			if CanTransition(from, to) {
				t.Errorf("terminal status %s must not transition to %s", from, to)
			}
		}
	}
}

func TestValidStatus(t *testing.T) {
	if !ValidStatus(StatusPacked) {
		t.Error("expected packed to be a valid status")
	}
	if ValidStatus(OrderStatus("shipped")) {
		t.Error("expected shipped to be unknown")
	}
	if ValidStatus(OrderStatus("")) {
		t.Error("expected empty status to be unknown")
	}
}

func TestReservesInventory(t *testing.T) {
	holding := []OrderStatus{StatusAccepted, StatusPacked}
	for _, s := range holding {
		if !ReservesInventory(s) {
			t.Errorf("expected %s to hold reservations", s)
		}
	}

	notHolding := []OrderStatus{StatusPending, StatusRejected, StatusDispatched, StatusDelivered, StatusCancelled}
	for _, s := range notHolding {
		if ReservesInventory(s) {
			t.Errorf("expected %s to hold no reservations", s)
		}
	}
}
