package domain

import "time"

// OrderStatus описывает жизненный цикл заказа в магазине.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, но обработка ещё не началась.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing — заказ принят в работу (сборка, упаковка).
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен клиенту; терминальный статус.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён; терминальный статус.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderItem представляет одну позицию заказа.
// После создания заказа позиция неизменяема: возвраты оформляются
// отдельными записями Return и не трогают исходную позицию.
type OrderItem struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// ProductID — идентификатор товара из каталога.
	ProductID string
	// Qty — количество единиц товара (> 0).
	Qty int32
	// UnitPriceMinor — цена за единицу в минимальных денежных единицах (центах).
	UnitPriceMinor int64
	// DiscountPercent — скидка на позицию, 0–100.
	DiscountPercent int32
	// CreatedAt фиксирует момент добавления позиции в заказ.
	CreatedAt time.Time
}

// Order агрегирует состояние заказа и его позиции.
// Все денежные поля хранятся в минимальных единицах (центах).
type Order struct {
	ID                string
	CustomerID        string
	Status            OrderStatus
	ShippingAddressID string
	BillingAddressID  string
	ShippingMethod    ShippingMethod
	ShippingMinor     int64
	TaxMinor          int64
	DiscountMinor     int64
	SubtotalMinor     int64
	TotalMinor        int64
	PaymentMethod     string
	Items             []OrderItem
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.TotalMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	// Позиция на товар ровно одна: повторный productID — ошибка данных.
	seen := make(map[string]struct{}, len(o.Items))
	var subtotal int64
	for _, item := range o.Items {
		if item.ProductID == "" {
			errs = append(errs, ErrItemProductRequired)
		}
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.UnitPriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		if item.DiscountPercent < 0 || item.DiscountPercent > 100 {
			errs = append(errs, ErrItemDiscountInvalid)
		}
		if _, dup := seen[item.ProductID]; dup {
			errs = append(errs, ErrItemDuplicateProduct)
		}
		seen[item.ProductID] = struct{}{}
		subtotal += int64(item.Qty) * item.UnitPriceMinor
	}

	// Сверяем производные суммы: subtotal по позициям и итог заказа.
	if subtotal != o.SubtotalMinor {
		errs = append(errs, ErrAmountMismatch)
	}
	if o.SubtotalMinor+o.ShippingMinor+o.TaxMinor-o.DiscountMinor != o.TotalMinor {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}

// Item возвращает позицию заказа по товару или ErrOrderItemNotFound.
func (o *Order) Item(productID string) (OrderItem, error) {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return item, nil
		}
	}
	return OrderItem{}, ErrOrderItemNotFound
}
