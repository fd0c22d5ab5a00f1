package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

const orderColumns = `id, customer_id, status, shipping_address_id, billing_address_id,
	shipping_method, shipping_minor, tax_minor, discount_minor, subtotal_minor,
	total_minor, payment_method, created_at, updated_at`

type orderRepository struct {
	sess session
}

// Create сохраняет заказ вместе с позициями. Занятый ID — ErrOrderExists.
// Записи позиций попадают в ту же транзакцию, что и сам заказ: вне WithinTx
// метод не используется сервисами и оставлен атомарным на уровне строк.
func (r *orderRepository) Create(order domain.Order) error {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	_, err := r.sess.q.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		order.ID, order.CustomerID, string(order.Status),
		order.ShippingAddressID, order.BillingAddressID, string(order.ShippingMethod),
		order.ShippingMinor, order.TaxMinor, order.DiscountMinor, order.SubtotalMinor,
		order.TotalMinor, order.PaymentMethod, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		if _, err := r.sess.q.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, qty, unit_price_minor, discount_percent, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
			item.ID, order.ID, item.ProductID, item.Qty,
			item.UnitPriceMinor, item.DiscountPercent, item.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

// Get возвращает заказ с позициями или ErrOrderNotFound.
func (r *orderRepository) Get(id string) (domain.Order, error) {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	order, err := r.scanOrder(r.sess.q.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1
	`, id))
	if err != nil {
		return domain.Order{}, err
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	return order, nil
}

// GetItem возвращает позицию заказа по товару или ErrOrderItemNotFound.
func (r *orderRepository) GetItem(orderID, productID string) (domain.OrderItem, error) {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	var item domain.OrderItem
	err := r.sess.q.QueryRowContext(ctx, `
		SELECT id, product_id, qty, unit_price_minor, discount_percent, created_at
		FROM order_items
		WHERE order_id = $1 AND product_id = $2
	`, orderID, productID).Scan(
		&item.ID, &item.ProductID, &item.Qty,
		&item.UnitPriceMinor, &item.DiscountPercent, &item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.OrderItem{}, domain.ErrOrderItemNotFound
		}
		return domain.OrderItem{}, fmt.Errorf("select order item: %w", err)
	}
	return item, nil
}

// ListByCustomer возвращает заказы клиента, новые первыми.
func (r *orderRepository) ListByCustomer(customerID string, limit int) ([]domain.Order, error) {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.sess.q.QueryContext(ctx, query+" LIMIT $2", customerID, limit)
	} else {
		rows, err = r.sess.q.QueryContext(ctx, query, customerID)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

// UpdateStatus — compare-and-swap статуса: строка меняется только если текущий
// статус всё ещё from. Проигранная гонка — ErrStatusConflict.
func (r *orderRepository) UpdateStatus(orderID string, from, to domain.OrderStatus, updatedAt time.Time) error {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	res, err := r.sess.q.ExecContext(ctx, `
		UPDATE orders
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`, orderID, string(from), string(to), updatedAt)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var id string
		err := r.sess.q.QueryRowContext(ctx, `SELECT id FROM orders WHERE id = $1`, orderID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("check order exists: %w", err)
		}
		return domain.ErrStatusConflict
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *orderRepository) scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order          domain.Order
		status, method string
	)
	err := row.Scan(
		&order.ID, &order.CustomerID, &status,
		&order.ShippingAddressID, &order.BillingAddressID, &method,
		&order.ShippingMinor, &order.TaxMinor, &order.DiscountMinor, &order.SubtotalMinor,
		&order.TotalMinor, &order.PaymentMethod, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("scan order row: %w", err)
	}
	order.Status = domain.OrderStatus(status)
	order.ShippingMethod = domain.ShippingMethod(method)
	return order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.sess.q.QueryContext(ctx, `
		SELECT id, product_id, qty, unit_price_minor, discount_percent, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID, &item.ProductID, &item.Qty,
			&item.UnitPriceMinor, &item.DiscountPercent, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
