package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// state — всё состояние in-memory хранилища одним значением.
// Транзакции работают над глубокой копией и подменяют состояние при коммите.
type state struct {
	orders        map[string]domain.Order
	inventory     map[string]domain.InventoryRecord
	alerts        map[string]domain.InventoryAlert
	returns       map[string]domain.Return
	notifications map[string]domain.Notification
	customers     map[string]domain.Customer
	addresses     map[string]domain.Address
	products      map[string]domain.Product
}

func newState() *state {
	return &state{
		orders:        make(map[string]domain.Order),
		inventory:     make(map[string]domain.InventoryRecord),
		alerts:        make(map[string]domain.InventoryAlert),
		returns:       make(map[string]domain.Return),
		notifications: make(map[string]domain.Notification),
		customers:     make(map[string]domain.Customer),
		addresses:     make(map[string]domain.Address),
		products:      make(map[string]domain.Product),
	}
}

// clone делает глубокую копию состояния, включая срезы позиций заказов.
func (st *state) clone() *state {
	cp := newState()
	for id, order := range st.orders {
		items := make([]domain.OrderItem, len(order.Items))
		copy(items, order.Items)
		order.Items = items
		cp.orders[id] = order
	}
	for id, rec := range st.inventory {
		cp.inventory[id] = rec
	}
	for id, alert := range st.alerts {
		cp.alerts[id] = alert
	}
	for id, ret := range st.returns {
		cp.returns[id] = ret
	}
	for id, n := range st.notifications {
		cp.notifications[id] = n
	}
	for id, c := range st.customers {
		cp.customers[id] = c
	}
	for id, a := range st.addresses {
		cp.addresses[id] = a
	}
	for id, p := range st.products {
		cp.products[id] = p
	}
	return cp
}

// Store — in-memory реализация domain.Store для локальной разработки и тестов.
// Транзакции сериализуются одним мьютексом: для dev-режима этого достаточно,
// конкуренцию по отдельным товарам разводит только PostgreSQL-бэкенд.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore создаёт пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{st: newState()}
}

// WithinTx выполняет fn над снапшотом состояния. Ошибка из fn отбрасывает
// снапшот целиком, успех подменяет состояние на снапшот.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.st.clone()
	if err := fn(&memTx{access: access{st: snap}}); err != nil {
		return err
	}
	s.st = snap
	return nil
}

// access выбирает между снапшотом транзакции и актуальным состоянием хранилища.
// В транзакции мьютекс уже удерживается, поэтому снапшот читается напрямую.
type access struct {
	st    *state // снапшот транзакции; nil в autocommit-режиме
	store *Store
}

func (a access) read(fn func(st *state) error) error {
	if a.st != nil {
		return fn(a.st)
	}
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	return fn(a.store.st)
}

func (a access) write(fn func(st *state) error) error {
	if a.st != nil {
		return fn(a.st)
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	return fn(a.store.st)
}

// memTx отдаёт репозитории, привязанные к снапшоту транзакции.
type memTx struct {
	access
}

func (t *memTx) Orders() domain.OrderRepository { return &orderRepository{access: t.access} }
func (t *memTx) Inventory() domain.InventoryRepository {
	return &inventoryRepository{access: t.access}
}
func (t *memTx) Returns() domain.ReturnRepository { return &returnRepository{access: t.access} }
func (t *memTx) Notifications() domain.NotificationRepository {
	return &notificationRepository{access: t.access}
}
func (t *memTx) Customers() domain.CustomerDirectory { return &customerDirectory{access: t.access} }
func (t *memTx) Catalog() domain.ProductCatalog      { return &productCatalog{access: t.access} }

// Репозитории вне транзакции работают в autocommit-режиме под мьютексом хранилища.

func (s *Store) Orders() domain.OrderRepository {
	return &orderRepository{access: access{store: s}}
}

func (s *Store) Inventory() domain.InventoryRepository {
	return &inventoryRepository{access: access{store: s}}
}

func (s *Store) Returns() domain.ReturnRepository {
	return &returnRepository{access: access{store: s}}
}

func (s *Store) Notifications() domain.NotificationRepository {
	return &notificationRepository{access: access{store: s}}
}

func (s *Store) Customers() domain.CustomerDirectory {
	return &customerDirectory{access: access{store: s}}
}

func (s *Store) Catalog() domain.ProductCatalog {
	return &productCatalog{access: access{store: s}}
}

// SeedProduct кладёт товар в каталог (для dev-режима и тестов).
func (s *Store) SeedProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = p
}

// SeedCustomer кладёт клиента в справочник.
func (s *Store) SeedCustomer(c domain.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.customers[c.ID] = c
}

// SeedAddress кладёт адрес в справочник.
func (s *Store) SeedAddress(a domain.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.addresses[a.ID] = a
}

// SeedInventory кладёт складскую запись.
func (s *Store) SeedInventory(rec domain.InventoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.inventory[rec.ProductID] = rec
}

var _ domain.Store = (*Store)(nil)
var _ domain.Tx = (*memTx)(nil)
