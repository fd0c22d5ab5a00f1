package memory

import (
	"time"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// customerDirectory — in-memory реализация CustomerDirectory.
type customerDirectory struct {
	access
}

// Get возвращает клиента или ErrCustomerNotFound.
func (r *customerDirectory) Get(id string) (domain.Customer, error) {
	var customer domain.Customer
	err := r.read(func(st *state) error {
		stored, ok := st.customers[id]
		if !ok {
			return domain.ErrCustomerNotFound
		}
		customer = stored
		return nil
	})
	return customer, err
}

// AddLoyaltyPoints начисляет баллы клиенту.
func (r *customerDirectory) AddLoyaltyPoints(customerID string, points int64) error {
	if points < 0 {
		return domain.ErrAmountNegative
	}
	return r.write(func(st *state) error {
		customer, ok := st.customers[customerID]
		if !ok {
			return domain.ErrCustomerNotFound
		}
		customer.LoyaltyPoints += points
		customer.UpdatedAt = time.Now().UTC()
		st.customers[customerID] = customer
		return nil
	})
}

// AddressExists проверяет существование адреса.
func (r *customerDirectory) AddressExists(addressID string) (bool, error) {
	exists := false
	err := r.read(func(st *state) error {
		_, exists = st.addresses[addressID]
		return nil
	})
	return exists, err
}

// productCatalog — in-memory реализация read-only каталога товаров.
type productCatalog struct {
	access
}

// Get возвращает товар или ErrProductNotFound.
func (r *productCatalog) Get(id string) (domain.Product, error) {
	var product domain.Product
	err := r.read(func(st *state) error {
		stored, ok := st.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		product = stored
		return nil
	})
	return product, err
}

var _ domain.CustomerDirectory = (*customerDirectory)(nil)
var _ domain.ProductCatalog = (*productCatalog)(nil)
