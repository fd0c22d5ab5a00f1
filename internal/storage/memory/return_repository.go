package memory

import (
	"sort"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// returnRepository — in-memory реализация ReturnRepository.
type returnRepository struct {
	access
}

// Create сохраняет новый возврат.
func (r *returnRepository) Create(ret domain.Return) error {
	return r.write(func(st *state) error {
		st.returns[ret.ID] = ret
		return nil
	})
}

// Get возвращает возврат по идентификатору.
func (r *returnRepository) Get(id string) (domain.Return, error) {
	var ret domain.Return
	err := r.read(func(st *state) error {
		stored, ok := st.returns[id]
		if !ok {
			return domain.ErrReturnNotFound
		}
		ret = stored
		return nil
	})
	return ret, err
}

// ListByOrder возвращает возвраты по заказу, старые первыми.
func (r *returnRepository) ListByOrder(orderID string) ([]domain.Return, error) {
	var result []domain.Return
	err := r.read(func(st *state) error {
		result = make([]domain.Return, 0)
		for _, ret := range st.returns {
			if ret.OrderID == orderID {
				result = append(result, ret)
			}
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

var _ domain.ReturnRepository = (*returnRepository)(nil)
