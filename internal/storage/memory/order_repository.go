package memory

import (
	"sort"
	"time"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// orderRepository — in-memory реализация OrderRepository.
type orderRepository struct {
	access
}

// Create сохраняет новый заказ, если ID ещё не занят.
func (r *orderRepository) Create(order domain.Order) error {
	return r.write(func(st *state) error {
		if _, exists := st.orders[order.ID]; exists {
			return domain.ErrOrderExists
		}
		// Сохраняем копию позиций, чтобы избежать мутаций извне.
		items := make([]domain.OrderItem, len(order.Items))
		copy(items, order.Items)
		order.Items = items
		st.orders[order.ID] = order
		return nil
	})
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepository) Get(id string) (domain.Order, error) {
	var order domain.Order
	err := r.read(func(st *state) error {
		stored, ok := st.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		items := make([]domain.OrderItem, len(stored.Items))
		copy(items, stored.Items)
		stored.Items = items
		order = stored
		return nil
	})
	return order, err
}

// GetItem возвращает позицию заказа по товару.
func (r *orderRepository) GetItem(orderID, productID string) (domain.OrderItem, error) {
	var item domain.OrderItem
	err := r.read(func(st *state) error {
		order, ok := st.orders[orderID]
		if !ok {
			return domain.ErrOrderNotFound
		}
		found, err := order.Item(productID)
		if err != nil {
			return err
		}
		item = found
		return nil
	})
	return item, err
}

// ListByCustomer возвращает заказы клиента, новые первыми.
func (r *orderRepository) ListByCustomer(customerID string, limit int) ([]domain.Order, error) {
	var result []domain.Order
	err := r.read(func(st *state) error {
		result = make([]domain.Order, 0)
		for _, order := range st.orders {
			if order.CustomerID != customerID {
				continue
			}
			items := make([]domain.OrderItem, len(order.Items))
			copy(items, order.Items)
			order.Items = items
			result = append(result, order)
		}

		sort.Slice(result, func(i, j int) bool {
			if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
				return result[i].CreatedAt.After(result[j].CreatedAt)
			}
			return result[i].ID > result[j].ID
		})

		if limit > 0 && len(result) > limit {
			result = result[:limit]
		}
		return nil
	})
	return result, err
}

// UpdateStatus выполняет compare-and-swap статуса заказа.
func (r *orderRepository) UpdateStatus(orderID string, from, to domain.OrderStatus, updatedAt time.Time) error {
	return r.write(func(st *state) error {
		order, ok := st.orders[orderID]
		if !ok {
			return domain.ErrOrderNotFound
		}
		if order.Status != from {
			return domain.ErrStatusConflict
		}
		order.Status = to
		order.UpdatedAt = updatedAt
		st.orders[orderID] = order
		return nil
	})
}

var _ domain.OrderRepository = (*orderRepository)(nil)
