package memory

import (
	"sort"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// notificationRepository — in-memory реализация NotificationRepository.
type notificationRepository struct {
	access
}

// Append сохраняет новое уведомление.
func (r *notificationRepository) Append(n domain.Notification) error {
	return r.write(func(st *state) error {
		st.notifications[n.ID] = n
		return nil
	})
}

// ListByCustomer возвращает уведомления клиента, новые первыми.
func (r *notificationRepository) ListByCustomer(customerID string, limit int) ([]domain.Notification, error) {
	var result []domain.Notification
	err := r.read(func(st *state) error {
		result = make([]domain.Notification, 0)
		for _, n := range st.notifications {
			if n.CustomerID == customerID {
				result = append(result, n)
			}
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

// PullUnpublished возвращает неопубликованные уведомления, старые первыми.
func (r *notificationRepository) PullUnpublished(limit int) ([]domain.Notification, error) {
	var result []domain.Notification
	err := r.read(func(st *state) error {
		result = make([]domain.Notification, 0)
		for _, n := range st.notifications {
			if !n.Published {
				result = append(result, n)
			}
		}
		sort.Slice(result, func(i, j int) bool {
			if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
				return result[i].CreatedAt.Before(result[j].CreatedAt)
			}
			return result[i].ID < result[j].ID
		})
		if limit > 0 && len(result) > limit {
			result = result[:limit]
		}
		return nil
	})
	return result, err
}

// MarkPublished помечает уведомление доставленным в брокер.
func (r *notificationRepository) MarkPublished(id string) error {
	return r.write(func(st *state) error {
		n, ok := st.notifications[id]
		if !ok {
			return domain.ErrNotificationNotFound
		}
		n.Published = true
		st.notifications[id] = n
		return nil
	})
}

var _ domain.NotificationRepository = (*notificationRepository)(nil)
