package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

type inventoryRepository struct {
	sess session
}

// Get возвращает складскую запись или ErrInventoryNotFound.
// Внутри транзакции строка блокируется (FOR UPDATE) до конца транзакции.
func (r *inventoryRepository) Get(productID string) (domain.InventoryRecord, error) {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	query := `
		SELECT product_id, quantity_in_stock, reorder_threshold, reorder_qty,
		       warehouse_location, last_restock_date, updated_at
		FROM inventory
		WHERE product_id = $1
	`
	if r.sess.locking {
		query += " FOR UPDATE"
	}

	var (
		rec     domain.InventoryRecord
		restock sql.NullTime
	)
	err := r.sess.q.QueryRowContext(ctx, query, productID).Scan(
		&rec.ProductID, &rec.QuantityInStock, &rec.ReorderThreshold, &rec.ReorderQty,
		&rec.WarehouseLocation, &restock, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.InventoryRecord{}, domain.ErrInventoryNotFound
		}
		return domain.InventoryRecord{}, fmt.Errorf("select inventory: %w", err)
	}
	if restock.Valid {
		rec.LastRestockDate = restock.Time
	}
	return rec, nil
}

// Decrement условно уменьшает остаток: UPDATE проходит только при
// quantity_in_stock >= qty, иначе — ErrStockConflict. CHECK-ограничение
// в схеме страхует инвариант неотрицательности ещё раз на уровне БД.
func (r *inventoryRepository) Decrement(productID string, qty int32) error {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	res, err := r.sess.q.ExecContext(ctx, `
		UPDATE inventory
		SET quantity_in_stock = quantity_in_stock - $2, updated_at = NOW()
		WHERE product_id = $1 AND quantity_in_stock >= $2
	`, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement inventory: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var id string
		err := r.sess.q.QueryRowContext(ctx, `SELECT product_id FROM inventory WHERE product_id = $1`, productID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInventoryNotFound
		}
		if err != nil {
			return fmt.Errorf("check inventory exists: %w", err)
		}
		return domain.ErrStockConflict
	}
	return nil
}

// Increment увеличивает остаток и фиксирует дату пополнения.
func (r *inventoryRepository) Increment(productID string, qty int32, restockedAt time.Time) error {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	res, err := r.sess.q.ExecContext(ctx, `
		UPDATE inventory
		SET quantity_in_stock = quantity_in_stock + $2,
		    last_restock_date = $3,
		    updated_at = $3
		WHERE product_id = $1
	`, productID, qty, restockedAt)
	if err != nil {
		return fmt.Errorf("increment inventory: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrInventoryNotFound
	}
	return nil
}

// CreateAlertIfAbsent создаёт алерт через INSERT ... ON CONFLICT DO NOTHING
// по частичному уникальному индексу (product_id, alert_type) WHERE NOT resolved:
// дедупликацию выполняет сама БД, гонки исключены.
func (r *inventoryRepository) CreateAlertIfAbsent(alert domain.InventoryAlert) (bool, error) {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	res, err := r.sess.q.ExecContext(ctx, `
		INSERT INTO inventory_alerts (id, product_id, alert_type, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, alert_type) WHERE NOT resolved DO NOTHING
	`, alert.ID, alert.ProductID, string(alert.Type), alert.Resolved, alert.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert inventory alert: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListUnresolvedAlerts возвращает неразрешённые алерты, старые первыми.
func (r *inventoryRepository) ListUnresolvedAlerts(productID string) ([]domain.InventoryAlert, error) {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	query := `
		SELECT id, product_id, alert_type, resolved, created_at
		FROM inventory_alerts
		WHERE NOT resolved
	`
	args := []any{}
	if productID != "" {
		query += " AND product_id = $1"
		args = append(args, productID)
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.sess.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]domain.InventoryAlert, 0)
	for rows.Next() {
		var (
			alert     domain.InventoryAlert
			alertType string
		)
		if err := rows.Scan(&alert.ID, &alert.ProductID, &alertType, &alert.Resolved, &alert.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory alert: %w", err)
		}
		alert.Type = domain.AlertType(alertType)
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory alerts: %w", err)
	}

	return alerts, nil
}

var _ domain.InventoryRepository = (*inventoryRepository)(nil)
