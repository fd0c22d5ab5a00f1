package domain

import "time"

// AlertType — тип складского алерта.
type AlertType string

const (
	// AlertTypeLowStock — остаток товара на складе достиг порога дозаказа.
	AlertTypeLowStock AlertType = "low_stock"
)

// InventoryRecord хранит складской остаток товара. Ровно одна запись на товар.
// Это главная точка конкуренции в системе: остаток одновременно уменьшают
// заказы и увеличивают возвраты.
type InventoryRecord struct {
	ProductID string
	// QuantityInStock — текущий остаток; жёсткий инвариант: >= 0.
	QuantityInStock int32
	// ReorderThreshold — порог, при достижении которого поднимается алерт.
	ReorderThreshold int32
	// ReorderQty — рекомендованный объём дозаказа.
	ReorderQty int32
	// WarehouseLocation — позиция на складе (стеллаж/ячейка).
	WarehouseLocation string
	// LastRestockDate — момент последнего пополнения; нулевое время, если не было.
	LastRestockDate time.Time
	UpdatedAt       time.Time
}

// Validate проверяет инварианты складской записи.
func (r *InventoryRecord) Validate() []error {
	var errs []error

	if r.ProductID == "" {
		errs = append(errs, ErrProductRequired)
	}
	if r.QuantityInStock < 0 {
		errs = append(errs, ErrStockNegative)
	}
	if r.ReorderThreshold < 0 {
		errs = append(errs, ErrReorderThresholdInvalid)
	}

	return errs
}

// BelowThreshold сообщает, достигнут ли порог дозаказа.
func (r *InventoryRecord) BelowThreshold() bool {
	return r.QuantityInStock <= r.ReorderThreshold
}

// InventoryAlert — складской алерт по товару.
// Инвариант: не больше одного неразрешённого алерта на пару (товар, тип);
// дедупликация выполняется хранилищем при создании.
type InventoryAlert struct {
	ID        string
	ProductID string
	Type      AlertType
	Resolved  bool
	CreatedAt time.Time
}
