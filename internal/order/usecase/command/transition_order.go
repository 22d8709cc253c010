package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/supplycore/fulfillment/internal/inventory/domain"
	orderdomain "github.com/supplycore/fulfillment/internal/order/domain"
	"github.com/supplycore/fulfillment/pkg/logger"
)

const maxTransitionAttempts = 3

// StatusChangedEvent is emitted after every committed transition
type StatusChangedEvent struct {
	OrderID        uint
	OrderNumber    string
	BuyerID        uint
	SellerID       uint
	PreviousStatus string
	CurrentStatus  string
	Actor          string
	OccurredAt     time.Time
}

// EventPublisher delivers fulfillment events to downstream consumers.
// Publishing is fire-and-forget: a delivery failure never rolls back the
// committed transition.
type EventPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, event StatusChangedEvent) error
}

// LedgerCacheInvalidator evicts cached availability for ledger rows a
// committed transition mutated. The transition writes through transaction-
// scoped repositories, so read caches in front of the ledger are not
// refreshed on that path and must be evicted after commit.
type LedgerCacheInvalidator interface {
	InvalidatePair(productID, holderID uint)
}

// LineShipment is the quantity a seller actually ships for one line at
// dispatch time. Lines without an entry ship in full.
type LineShipment struct {
	LineNo            int
	Quantity          int
	ExpectedRestockAt *time.Time
}

// TransitionOrderCommand requests one status transition
type TransitionOrderCommand struct {
	OrderID   uint
	Target    orderdomain.OrderStatus
	Actor     string
	Note      string
	Shipments []LineShipment
}

// TransitionOrderHandler is the fulfillment orchestrator: the single writer
// of order status. Each call validates the transition, applies the matching
// inventory movements line by line, appends an audit entry and persists
// everything in one transaction. Serialization conflicts retry the whole
// call a bounded number of times.
type TransitionOrderHandler struct {
	uow         orderdomain.UnitOfWork
	publisher   EventPublisher
	ledgerCache LedgerCacheInvalidator
	invoiceCfg  InvoiceConfig
}

// NewTransitionOrderHandler creates a new transition order handler
func NewTransitionOrderHandler(uow orderdomain.UnitOfWork, publisher EventPublisher, ledgerCache LedgerCacheInvalidator, invoiceCfg InvoiceConfig) *TransitionOrderHandler {
	return &TransitionOrderHandler{
		uow:         uow,
		publisher:   publisher,
		ledgerCache: ledgerCache,
		invoiceCfg:  invoiceCfg,
	}
}

// Handle executes the transition command
func (h *TransitionOrderHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) (*orderdomain.Order, error) {
	if cmd.OrderID == 0 {
		return nil, fmt.Errorf("order_id is required")
	}
	if !orderdomain.ValidStatus(cmd.Target) {
		return nil, fmt.Errorf("%w: unknown status %q", orderdomain.ErrInvalidTransition, cmd.Target)
	}

	var (
		updated  *orderdomain.Order
		previous orderdomain.OrderStatus
		err      error
	)

	for attempt := 1; attempt <= maxTransitionAttempts; attempt++ {
		err = h.uow.Do(ctx, func(tx orderdomain.TxRepos) error {
			order, txErr := tx.Orders().FindByIDForUpdate(cmd.OrderID)
			if txErr != nil {
				return txErr
			}
			previous = order.Status

			if !orderdomain.CanTransition(order.Status, cmd.Target) {
				return fmt.Errorf("%w: %s -> %s", orderdomain.ErrInvalidTransition, order.Status, cmd.Target)
			}

			if txErr := h.applyInventoryEffects(tx, order, cmd); txErr != nil {
				return txErr
			}

			order.Status = cmd.Target
			if txErr := tx.Orders().Update(order); txErr != nil {
				return txErr
			}

			if txErr := tx.Audit().Append(&orderdomain.AuditEntry{
				OrderID:    order.ID,
				FromStatus: previous,
				ToStatus:   cmd.Target,
				Actor:      cmd.Actor,
				Note:       cmd.Note,
			}); txErr != nil {
				return txErr
			}

			if cmd.Target == orderdomain.StatusDelivered {
				if _, txErr := generateIfAbsent(tx, order, h.invoiceCfg, time.Now()); txErr != nil {
					return txErr
				}
			}

			updated = order
			return nil
		})

		if err == nil {
			break
		}
		if !errors.Is(err, orderdomain.ErrPersistenceConflict) {
			return nil, err
		}
		logger.Warn(ctx).
			Err(err).
			Uint("order_id", cmd.OrderID).
			Int("attempt", attempt).
			Msg("Transition conflicted, retrying")
	}
	if err != nil {
		return nil, orderdomain.ErrBusy
	}

	h.evictLedgerCache(previous, updated)
	h.publish(ctx, updated, previous, cmd.Actor)
	return updated, nil
}

// evictLedgerCache drops cached availability for every row the committed
// transition moved stock on
func (h *TransitionOrderHandler) evictLedgerCache(previous orderdomain.OrderStatus, order *orderdomain.Order) {
	if h.ledgerCache == nil {
		return
	}
	touched := order.Status == orderdomain.StatusAccepted ||
		order.Status == orderdomain.StatusDispatched ||
		((order.Status == orderdomain.StatusRejected || order.Status == orderdomain.StatusCancelled) &&
			orderdomain.ReservesInventory(previous))
	if !touched {
		return
	}
	for i := range order.Lines {
		h.ledgerCache.InvalidatePair(order.Lines[i].ProductID, order.SellerID)
	}
}

// applyInventoryEffects performs the stock movements tied to the target
// status, line by line in line order. Ledger rows are locked up front in
// ascending product id order.
func (h *TransitionOrderHandler) applyInventoryEffects(tx orderdomain.TxRepos, order *orderdomain.Order, cmd TransitionOrderCommand) error {
	switch {
	case cmd.Target == orderdomain.StatusAccepted:
		return h.reserveAll(tx, order)
	case cmd.Target == orderdomain.StatusDispatched:
		return h.dispatch(tx, order, cmd.Shipments)
	case cmd.Target == orderdomain.StatusRejected || cmd.Target == orderdomain.StatusCancelled:
		if orderdomain.ReservesInventory(order.Status) {
			return h.releaseAll(tx, order)
		}
		return nil
	default:
		// delivered: stock already left at dispatch; pending/packed moves
		// carry no inventory side effects
		return nil
	}
}

func (h *TransitionOrderHandler) lockLedger(tx orderdomain.TxRepos, order *orderdomain.Order) error {
	ids := make([]uint, 0, len(order.Lines))
	for i := range order.Lines {
		ids = append(ids, order.Lines[i].ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return tx.LockInventory(ids, order.SellerID)
}

func (h *TransitionOrderHandler) reserveAll(tx orderdomain.TxRepos, order *orderdomain.Order) error {
	if err := h.lockLedger(tx, order); err != nil {
		return err
	}

	var short []uint
	for i := range order.Lines {
		line := &order.Lines[i]
		_, err := tx.Inventory().Reserve(line.ProductID, order.SellerID, line.QuantityOrdered)
		if errors.Is(err, domain.ErrInsufficientStock) {
			short = append(short, line.ProductID)
			continue
		}
		if err != nil {
			return err
		}
	}
	if len(short) > 0 {
		// Rolling back the transaction reverts reservations made for
		// earlier lines in this same call.
		return &orderdomain.InsufficientInventoryError{ProductIDs: short}
	}
	return nil
}

func (h *TransitionOrderHandler) dispatch(tx orderdomain.TxRepos, order *orderdomain.Order, shipments []LineShipment) error {
	byLine := make(map[int]LineShipment, len(shipments))
	for _, s := range shipments {
		if _, dup := byLine[s.LineNo]; dup {
			return fmt.Errorf("%w: duplicate shipment for line %d", orderdomain.ErrInvalidShipment, s.LineNo)
		}
		byLine[s.LineNo] = s
	}
	for lineNo := range byLine {
		found := false
		for i := range order.Lines {
			if order.Lines[i].LineNo == lineNo {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: order has no line %d", orderdomain.ErrInvalidShipment, lineNo)
		}
	}

	if err := h.lockLedger(tx, order); err != nil {
		return err
	}

	var short []uint
	for i := range order.Lines {
		line := &order.Lines[i]

		shipQty := line.QuantityOrdered
		var expected *time.Time
		if s, ok := byLine[line.LineNo]; ok {
			shipQty = s.Quantity
			expected = s.ExpectedRestockAt
		}

		if err := line.RecordShipment(shipQty, expected); err != nil {
			return err
		}

		_, err := tx.Inventory().Deduct(line.ProductID, order.SellerID, shipQty)
		if errors.Is(err, domain.ErrInsufficientReserved) {
			short = append(short, line.ProductID)
			continue
		}
		if err != nil {
			return err
		}

		// The unfulfilled remainder stays available to other buyers: its
		// reservation is released, and the line carries the backorder.
		if shortfall := line.QuantityOrdered - shipQty; shortfall > 0 {
			if _, err := tx.Inventory().Release(line.ProductID, order.SellerID, shortfall); err != nil {
				return err
			}
		}
	}
	if len(short) > 0 {
		return &orderdomain.InsufficientInventoryError{ProductIDs: short}
	}
	return nil
}

func (h *TransitionOrderHandler) releaseAll(tx orderdomain.TxRepos, order *orderdomain.Order) error {
	if err := h.lockLedger(tx, order); err != nil {
		return err
	}

	for i := range order.Lines {
		line := &order.Lines[i]
		outstanding := line.QuantityOrdered - line.QuantityShipped
		if outstanding <= 0 {
			continue
		}
		if _, err := tx.Inventory().Release(line.ProductID, order.SellerID, outstanding); err != nil {
			return err
		}
	}
	return nil
}

func (h *TransitionOrderHandler) publish(ctx context.Context, order *orderdomain.Order, previous orderdomain.OrderStatus, actor string) {
	if h.publisher == nil {
		return
	}
	event := StatusChangedEvent{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		BuyerID:        order.BuyerID,
		SellerID:       order.SellerID,
		PreviousStatus: string(previous),
		CurrentStatus:  string(order.Status),
		Actor:          actor,
		OccurredAt:     time.Now(),
	}
	if err := h.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		logger.Error(ctx).
			Err(err).
			Uint("order_id", order.ID).
			Str("status", string(order.Status)).
			Msg("Failed to publish status change event")
	}
}
