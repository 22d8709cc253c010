package command

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	invdomain "github.com/supplycore/fulfillment/internal/inventory/domain"
	"github.com/supplycore/fulfillment/internal/order/domain"
)

// ledgerKey identifies one inventory row
type ledgerKey struct {
	productID uint
	holderID  uint
}

// memStore is the shared state behind the in-memory unit of work
type memStore struct {
	orders      map[uint]*domain.Order
	invoices    map[uint]*domain.Invoice // keyed by order id
	audits      []domain.AuditEntry
	inventory   map[ledgerKey]*invdomain.InventoryRecord
	nextOrderID uint
}

func newMemStore() *memStore {
	return &memStore{
		orders:    make(map[uint]*domain.Order),
		invoices:  make(map[uint]*domain.Invoice),
		inventory: make(map[ledgerKey]*invdomain.InventoryRecord),
	}
}

func (s *memStore) addOrder(order *domain.Order) *domain.Order {
	s.nextOrderID++
	order.ID = s.nextOrderID
	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
	}
	s.orders[order.ID] = order
	return order
}

func (s *memStore) addInventory(productID, holderID uint, onHand, reserved int) {
	s.inventory[ledgerKey{productID, holderID}] = &invdomain.InventoryRecord{
		ID:               uint(len(s.inventory) + 1),
		ProductID:        productID,
		HolderID:         holderID,
		QuantityOnHand:   onHand,
		QuantityReserved: reserved,
		Active:           true,
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	c.nextOrderID = s.nextOrderID
	for id, o := range s.orders {
		c.orders[id] = cloneOrder(o)
	}
	for id, inv := range s.invoices {
		copied := *inv
		c.invoices[id] = &copied
	}
	c.audits = append([]domain.AuditEntry(nil), s.audits...)
	for k, r := range s.inventory {
		copied := *r
		c.inventory[k] = &copied
	}
	return c
}

func cloneOrder(o *domain.Order) *domain.Order {
	copied := *o
	copied.Lines = append([]domain.OrderLine(nil), o.Lines...)
	return &copied
}

// memUnitOfWork runs fn against a cloned store and commits the clone back
// only when fn succeeds, mirroring transactional rollback.
type memUnitOfWork struct {
	mu    sync.Mutex
	store *memStore

	// conflictsLeft forces ErrPersistenceConflict for the first N calls
	conflictsLeft int
	lockCalls     [][]uint
}

func newMemUnitOfWork(store *memStore) *memUnitOfWork {
	return &memUnitOfWork{store: store}
}

func (u *memUnitOfWork) Do(ctx context.Context, fn func(tx domain.TxRepos) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.conflictsLeft > 0 {
		u.conflictsLeft--
		return fmt.Errorf("%w: simulated serialization failure", domain.ErrPersistenceConflict)
	}

	txStore := u.store.clone()
	tx := &memTxRepos{store: txStore, uow: u}
	if err := fn(tx); err != nil {
		return err
	}
	u.store = txStore
	return nil
}

type memTxRepos struct {
	store *memStore
	uow   *memUnitOfWork
}

func (t *memTxRepos) Orders() domain.OrderRepository { return &memOrderRepo{store: t.store} }

func (t *memTxRepos) Invoices() domain.InvoiceRepository { return &memInvoiceRepo{store: t.store} }

func (t *memTxRepos) Audit() domain.AuditRepository { return &memAuditRepo{store: t.store} }

func (t *memTxRepos) Inventory() invdomain.InventoryRepository {
	return &memInventoryRepo{store: t.store}
}

func (t *memTxRepos) LockInventory(productIDs []uint, holderID uint) error {
	t.uow.lockCalls = append(t.uow.lockCalls, append([]uint(nil), productIDs...))
	return nil
}

// memOrderRepo

type memOrderRepo struct {
	store *memStore
}

func (r *memOrderRepo) Create(order *domain.Order) error {
	r.store.addOrder(order)
	return nil
}

func (r *memOrderRepo) FindByID(id uint) (*domain.Order, error) {
	order, ok := r.store.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (r *memOrderRepo) FindByIDForUpdate(id uint) (*domain.Order, error) {
	return r.FindByID(id)
}

func (r *memOrderRepo) FindAll(filter domain.OrderFilter) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.store.orders {
		out = append(out, *cloneOrder(o))
	}
	return out, nil
}

func (r *memOrderRepo) Update(order *domain.Order) error {
	if _, ok := r.store.orders[order.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	r.store.orders[order.ID] = cloneOrder(order)
	return nil
}

// memInvoiceRepo

type memInvoiceRepo struct {
	store *memStore
}

func (r *memInvoiceRepo) Create(invoice *domain.Invoice) error {
	if _, exists := r.store.invoices[invoice.OrderID]; exists {
		return gorm.ErrDuplicatedKey
	}
	invoice.ID = uint(len(r.store.invoices) + 1)
	copied := *invoice
	r.store.invoices[invoice.OrderID] = &copied
	return nil
}

func (r *memInvoiceRepo) FindByOrderID(orderID uint) (*domain.Invoice, error) {
	invoice, ok := r.store.invoices[orderID]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	copied := *invoice
	return &copied, nil
}

// memAuditRepo

type memAuditRepo struct {
	store *memStore
}

func (r *memAuditRepo) Append(entry *domain.AuditEntry) error {
	entry.ID = uint(len(r.store.audits) + 1)
	r.store.audits = append(r.store.audits, *entry)
	return nil
}

func (r *memAuditRepo) ListByOrder(orderID uint) ([]domain.AuditEntry, error) {
	var out []domain.AuditEntry
	for _, e := range r.store.audits {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

// memInventoryRepo applies the domain mutations to the in-memory ledger

type memInventoryRepo struct {
	store *memStore
}

func (r *memInventoryRepo) find(productID, holderID uint) (*invdomain.InventoryRecord, error) {
	record, ok := r.store.inventory[ledgerKey{productID, holderID}]
	if !ok || !record.Active {
		return nil, invdomain.ErrRecordNotFound
	}
	return record, nil
}

func (r *memInventoryRepo) Create(record *invdomain.InventoryRecord) error {
	r.store.inventory[ledgerKey{record.ProductID, record.HolderID}] = record
	return nil
}

func (r *memInventoryRepo) FindByID(id uint) (*invdomain.InventoryRecord, error) {
	for _, record := range r.store.inventory {
		if record.ID == id {
			copied := *record
			return &copied, nil
		}
	}
	return nil, invdomain.ErrRecordNotFound
}

func (r *memInventoryRepo) FindByProductAndHolder(productID, holderID uint) (*invdomain.InventoryRecord, error) {
	record, err := r.find(productID, holderID)
	if err != nil {
		return nil, err
	}
	copied := *record
	return &copied, nil
}

func (r *memInventoryRepo) FindAll(limit, offset int) ([]invdomain.InventoryRecord, error) {
	var out []invdomain.InventoryRecord
	for _, record := range r.store.inventory {
		out = append(out, *record)
	}
	return out, nil
}

func (r *memInventoryRepo) Deactivate(id uint) error {
	for _, record := range r.store.inventory {
		if record.ID == id {
			record.Active = false
			return nil
		}
	}
	return invdomain.ErrRecordNotFound
}

func (r *memInventoryRepo) Reserve(productID, holderID uint, qty int) (*invdomain.InventoryRecord, error) {
	record, err := r.find(productID, holderID)
	if err != nil {
		return nil, err
	}
	if err := record.Reserve(qty); err != nil {
		return nil, err
	}
	copied := *record
	return &copied, nil
}

func (r *memInventoryRepo) Release(productID, holderID uint, qty int) (*invdomain.InventoryRecord, error) {
	record, err := r.find(productID, holderID)
	if err != nil {
		return nil, err
	}
	if err := record.Release(qty); err != nil {
		return nil, err
	}
	copied := *record
	return &copied, nil
}

func (r *memInventoryRepo) Deduct(productID, holderID uint, qty int) (*invdomain.InventoryRecord, error) {
	record, err := r.find(productID, holderID)
	if err != nil {
		return nil, err
	}
	if err := record.Deduct(qty); err != nil {
		return nil, err
	}
	copied := *record
	return &copied, nil
}

func (r *memInventoryRepo) Add(productID, holderID uint, qty int) (*invdomain.InventoryRecord, error) {
	record, err := r.find(productID, holderID)
	if err != nil {
		return nil, err
	}
	if err := record.Add(qty); err != nil {
		return nil, err
	}
	copied := *record
	return &copied, nil
}

// recordingPublisher captures published events

type recordingPublisher struct {
	mu     sync.Mutex
	events []StatusChangedEvent
	err    error
}

func (p *recordingPublisher) PublishOrderStatusChanged(ctx context.Context, event StatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

// recordingEvictor captures ledger cache evictions

type recordingEvictor struct {
	mu    sync.Mutex
	pairs [][2]uint
}

func (e *recordingEvictor) InvalidatePair(productID, holderID uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pairs = append(e.pairs, [2]uint{productID, holderID})
}

// stubCatalog serves fixed products

type stubCatalog struct {
	products map[uint]*domain.CatalogProduct
}

func (c *stubCatalog) GetProduct(ctx context.Context, productID uint) (*domain.CatalogProduct, error) {
	product, ok := c.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %d not found in catalog", productID)
	}
	return product, nil
}
