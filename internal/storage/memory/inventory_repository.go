package memory

import (
	"sort"

	"time"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// inventoryRepository — in-memory реализация InventoryRepository.
type inventoryRepository struct {
	access
}

// Get возвращает складскую запись или ErrInventoryNotFound.
func (r *inventoryRepository) Get(productID string) (domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	err := r.read(func(st *state) error {
		stored, ok := st.inventory[productID]
		if !ok {
			return domain.ErrInventoryNotFound
		}
		rec = stored
		return nil
	})
	return rec, err
}

// Decrement условно уменьшает остаток; при нехватке возвращает ErrStockConflict.
func (r *inventoryRepository) Decrement(productID string, qty int32) error {
	return r.write(func(st *state) error {
		rec, ok := st.inventory[productID]
		if !ok {
			return domain.ErrInventoryNotFound
		}
		if rec.QuantityInStock < qty {
			return domain.ErrStockConflict
		}
		rec.QuantityInStock -= qty
		rec.UpdatedAt = time.Now().UTC()
		st.inventory[productID] = rec
		return nil
	})
}

// Increment увеличивает остаток и фиксирует дату пополнения.
func (r *inventoryRepository) Increment(productID string, qty int32, restockedAt time.Time) error {
	return r.write(func(st *state) error {
		rec, ok := st.inventory[productID]
		if !ok {
			return domain.ErrInventoryNotFound
		}
		rec.QuantityInStock += qty
		rec.LastRestockDate = restockedAt
		rec.UpdatedAt = restockedAt
		st.inventory[productID] = rec
		return nil
	})
}

// CreateAlertIfAbsent создаёт алерт, если неразрешённого алерта той же пары
// (товар, тип) ещё нет.
func (r *inventoryRepository) CreateAlertIfAbsent(alert domain.InventoryAlert) (bool, error) {
	created := false
	err := r.write(func(st *state) error {
		for _, existing := range st.alerts {
			if existing.ProductID == alert.ProductID && existing.Type == alert.Type && !existing.Resolved {
				return nil
			}
		}
		st.alerts[alert.ID] = alert
		created = true
		return nil
	})
	return created, err
}

// ListUnresolvedAlerts возвращает неразрешённые алерты, старые первыми.
func (r *inventoryRepository) ListUnresolvedAlerts(productID string) ([]domain.InventoryAlert, error) {
	var result []domain.InventoryAlert
	err := r.read(func(st *state) error {
		result = make([]domain.InventoryAlert, 0)
		for _, alert := range st.alerts {
			if alert.Resolved {
				continue
			}
			if productID != "" && alert.ProductID != productID {
				continue
			}
			result = append(result, alert)
		}
		sort.Slice(result, func(i, j int) bool {
			if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
				return result[i].CreatedAt.Before(result[j].CreatedAt)
			}
			return result[i].ID < result[j].ID
		})
		return nil
	})
	return result, err
}

var _ domain.InventoryRepository = (*inventoryRepository)(nil)
