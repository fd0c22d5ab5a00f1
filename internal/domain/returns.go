package domain

import "time"

// ReturnStatus описывает состояние возврата.
type ReturnStatus string

const (
	// ReturnStatusPending — возврат зарегистрирован, но ещё не обработан.
	ReturnStatusPending ReturnStatus = "pending"
	// ReturnStatusProcessed — возврат обработан, деньги возвращены.
	ReturnStatusProcessed ReturnStatus = "processed"
	// ReturnStatusRejected — возврат отклонён.
	ReturnStatusRejected ReturnStatus = "rejected"
)

// Return описывает возврат по позиции заказа.
// Запись создаётся один раз и далее в рамках ядра не изменяется.
type Return struct {
	ID          string
	OrderID     string
	OrderItemID string
	ProductID   string
	// Qty — возвращаемое количество; > 0 и не больше исходного количества позиции.
	Qty int32
	// RefundMinor — сумма возврата в центах.
	RefundMinor int64
	Reason      string
	Status      ReturnStatus
	// Restocked фиксирует, вернулся ли товар на склад.
	Restocked bool
	CreatedAt time.Time
}

// Validate проверяет корректность полей возврата.
func (r *Return) Validate() []error {
	var errs []error

	if r.OrderID == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if r.ProductID == "" {
		errs = append(errs, ErrProductRequired)
	}
	if r.Qty <= 0 {
		errs = append(errs, ErrReturnQtyInvalid)
	}
	if r.RefundMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	return errs
}
