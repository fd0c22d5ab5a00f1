package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

type customerDirectory struct {
	sess session
}

// Get возвращает клиента или ErrCustomerNotFound.
func (r *customerDirectory) Get(id string) (domain.Customer, error) {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	var c domain.Customer
	err := r.sess.q.QueryRowContext(ctx, `
		SELECT id, email, name, loyalty_points, created_at, updated_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Email, &c.Name, &c.LoyaltyPoints, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	return c, nil
}

// AddLoyaltyPoints начисляет баллы атомарным инкрементом строки.
func (r *customerDirectory) AddLoyaltyPoints(customerID string, points int64) error {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	res, err := r.sess.q.ExecContext(ctx, `
		UPDATE customers
		SET loyalty_points = loyalty_points + $2, updated_at = NOW()
		WHERE id = $1
	`, customerID, points)
	if err != nil {
		return fmt.Errorf("add loyalty points: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

// AddressExists проверяет существование адреса.
func (r *customerDirectory) AddressExists(addressID string) (bool, error) {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	var id string
	err := r.sess.q.QueryRowContext(ctx, `SELECT id FROM addresses WHERE id = $1`, addressID).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check address exists: %w", err)
}

type productCatalog struct {
	sess session
}

// Get возвращает товар или ErrProductNotFound.
func (r *productCatalog) Get(id string) (domain.Product, error) {
	ctx, cancel := r.sess.opCtx()
	defer cancel()

	var p domain.Product
	err := r.sess.q.QueryRowContext(ctx, `
		SELECT id, sku, name, price_minor, category_id, active
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.SKU, &p.Name, &p.PriceMinor, &p.CategoryID, &p.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

var (
	_ domain.CustomerDirectory = (*customerDirectory)(nil)
	_ domain.ProductCatalog    = (*productCatalog)(nil)
)
