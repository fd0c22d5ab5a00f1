package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

const returnColumns = `id, order_id, order_item_id, product_id, qty, refund_minor,
	reason, status, restocked, created_at`

type returnRepository struct {
	sess session
}

func (r *returnRepository) Create(ret domain.Return) error {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	_, err := r.sess.q.ExecContext(ctx, `
		INSERT INTO returns (`+returnColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		ret.ID, ret.OrderID, ret.OrderItemID, ret.ProductID, ret.Qty, ret.RefundMinor,
		ret.Reason, string(ret.Status), ret.Restocked, ret.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert return: %w", err)
	}
	return nil
}

func (r *returnRepository) Get(id string) (domain.Return, error) {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	ret, err := scanReturn(r.sess.q.QueryRowContext(ctx, `
		SELECT `+returnColumns+` FROM returns WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Return{}, domain.ErrReturnNotFound
		}
		return domain.Return{}, err
	}
	return ret, nil
}

// ListByOrder возвращает возвраты по заказу, старые первыми.
func (r *returnRepository) ListByOrder(orderID string) ([]domain.Return, error) {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	rows, err := r.sess.q.QueryContext(ctx, `
		SELECT `+returnColumns+`
		FROM returns
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Return, 0)
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, ret)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate return rows: %w", err)
	}

	return result, nil
}

func scanReturn(row rowScanner) (domain.Return, error) {
	var (
		ret    domain.Return
		status string
	)
	err := row.Scan(
		&ret.ID, &ret.OrderID, &ret.OrderItemID, &ret.ProductID, &ret.Qty, &ret.RefundMinor,
		&ret.Reason, &status, &ret.Restocked, &ret.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Return{}, err
		}
		return domain.Return{}, fmt.Errorf("scan return row: %w", err)
	}
	ret.Status = domain.ReturnStatus(status)
	return ret, nil
}

var _ domain.ReturnRepository = (*returnRepository)(nil)
