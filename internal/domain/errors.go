package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы.
	ErrAmountNegative = errors.New("amount must be non-negative")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка, если скидка позиции вне диапазона 0–100.
	ErrItemDiscountInvalid = errors.New("item discount must be between 0 and 100")
	// Ошибка отсутствующего товара в позиции.
	ErrItemProductRequired = errors.New("item product_id is required")
	// Ошибка повторного товара в заказе: позиция на товар ровно одна.
	ErrItemDuplicateProduct = errors.New("order already contains this product")
	// Ошибка несоответствия subtotal и сумм позиций.
	ErrAmountMismatch = errors.New("order subtotal does not match items sum")
	// Ошибка несоответствия итога заказа производной формуле.
	ErrTotalMismatch = errors.New("order total does not match subtotal + shipping + tax - discount")
	// Ошибка отсутствующего идентификатора заказа.
	ErrOrderIDRequired = errors.New("order_id is required")
	// Ошибка отсутствующего идентификатора товара.
	ErrProductRequired = errors.New("product_id is required")
	// Ошибка отрицательного складского остатка.
	ErrStockNegative = errors.New("quantity_in_stock must be non-negative")
	// Ошибка некорректного порога дозаказа.
	ErrReorderThresholdInvalid = errors.New("reorder_threshold must be non-negative")
	// Ошибка некорректного количества в возврате (<= 0).
	ErrReturnQtyInvalid = errors.New("return qty must be greater than zero")
	// Ошибка пустого текста уведомления.
	ErrNotificationMessageRequired = errors.New("notification message is required")

	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderItemNotFound возвращается, если в заказе нет позиции с таким товаром.
	ErrOrderItemNotFound = errors.New("order item not found")
	// ErrOrderExists возвращается при попытке создать заказ с занятым ID.
	ErrOrderExists = errors.New("order already exists")
	// ErrCustomerNotFound возвращается, если клиент неизвестен.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound возвращается, если товара нет в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductInactive возвращается при заказе снятого с продажи товара.
	ErrProductInactive = errors.New("product is not active")
	// ErrAddressNotFound возвращается, если адрес неизвестен.
	ErrAddressNotFound = errors.New("address not found")
	// ErrInventoryNotFound возвращается, если по товару нет складской записи.
	ErrInventoryNotFound = errors.New("inventory record not found")
	// ErrReturnNotFound возвращается, если возврат не найден.
	ErrReturnNotFound = errors.New("return not found")
	// ErrNotificationNotFound возвращается, если уведомление не найдено.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrStatusConflict сигнализирует о проигранном compare-and-swap статуса:
	// конкурирующее обновление успело изменить статус первым.
	ErrStatusConflict = errors.New("order status conflict")
	// ErrStockConflict сигнализирует, что условное уменьшение остатка не прошло
	// из-за конкурирующей записи; операцию нужно перепроверить.
	ErrStockConflict = errors.New("inventory stock conflict")
)

// InsufficientInventoryError — бизнес-ошибка: запрошено больше, чем есть на складе.
type InsufficientInventoryError struct {
	ProductID string
	Requested int32
	Available int32
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// InvalidTransitionError — бизнес-ошибка: переход статуса вне таблицы переходов.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition: %s -> %s", e.From, e.To)
}

// ExcessiveReturnQuantityError — бизнес-ошибка: возврат больше исходного количества.
type ExcessiveReturnQuantityError struct {
	Requested int32
	Original  int32
}

func (e *ExcessiveReturnQuantityError) Error() string {
	return fmt.Sprintf("return quantity %d exceeds originally ordered %d", e.Requested, e.Original)
}

// IsInsufficientInventory проверяет, является ли ошибка нехваткой остатка.
func IsInsufficientInventory(err error) bool {
	var target *InsufficientInventoryError
	return errors.As(err, &target)
}

// IsInvalidTransition проверяет, является ли ошибка запрещённым переходом статуса.
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

// IsExcessiveReturnQuantity проверяет, является ли ошибка превышением количества возврата.
func IsExcessiveReturnQuantity(err error) bool {
	var target *ExcessiveReturnQuantityError
	return errors.As(err, &target)
}

// IsNotFound проверяет ошибки отсутствия сущностей одной проверкой.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrOrderItemNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrAddressNotFound) ||
		errors.Is(err, ErrInventoryNotFound)
}

// IsConflict проверяет, является ли ошибка проигранной конкурентной записью.
func IsConflict(err error) bool {
	return errors.Is(err, ErrStatusConflict) || errors.Is(err, ErrStockConflict)
}
