package postgres

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

type notificationRepository struct {
	sess session
}

func (r *notificationRepository) Append(n domain.Notification) error {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	_, err := r.sess.q.ExecContext(ctx, `
		INSERT INTO notifications (id, customer_id, order_id, type, message, read, published, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, n.ID, n.CustomerID, n.OrderID, string(n.Type), n.Message, n.Read, n.Published, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListByCustomer возвращает уведомления клиента, новые первыми.
func (r *notificationRepository) ListByCustomer(customerID string, limit int) ([]domain.Notification, error) {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	query := `
		SELECT id, customer_id, order_id, type, message, read, published, created_at
		FROM notifications
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
	`
	args := []any{customerID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	return r.queryNotifications(ctx, query, args...)
}

// PullUnpublished возвращает неопубликованные уведомления, старые первыми.
// SKIP LOCKED позволяет нескольким relay-воркерам разбирать очередь параллельно.
func (r *notificationRepository) PullUnpublished(limit int) ([]domain.Notification, error) {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	query := `
		SELECT id, customer_id, order_id, type, message, read, published, created_at
		FROM notifications
		WHERE NOT published
		ORDER BY created_at ASC, id ASC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	if r.sess.locking {
		query += " FOR UPDATE SKIP LOCKED"
	}

	return r.queryNotifications(ctx, query, args...)
}

func (r *notificationRepository) MarkPublished(id string) error {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	res, err := r.sess.q.ExecContext(ctx, `
		UPDATE notifications SET published = TRUE WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark notification published: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) queryNotifications(ctx context.Context, query string, args ...any) ([]domain.Notification, error) {
	rows, err := r.sess.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Notification, 0)
	for rows.Next() {
		var (
			n     domain.Notification
			ntype string
		)
		if err := rows.Scan(&n.ID, &n.CustomerID, &n.OrderID, &ntype, &n.Message, &n.Read, &n.Published, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		n.Type = domain.NotificationType(ntype)
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification rows: %w", err)
	}

	return result, nil
}

var _ domain.NotificationRepository = (*notificationRepository)(nil)
