package domain

import "time"

// NotificationType — тип клиентского уведомления.
type NotificationType string

const (
	// NotificationOrderStatus — уведомление о смене статуса заказа.
	NotificationOrderStatus NotificationType = "order_status"
	// NotificationReturnProcessed — уведомление об обработанном возврате.
	NotificationReturnProcessed NotificationType = "return_processed"
)

// Notification — клиентское уведомление. Записи только добавляются;
// ядро их не изменяет (кроме отметки публикации relay-воркером).
type Notification struct {
	ID         string
	CustomerID string
	// OrderID опционален: уведомление может не относиться к заказу.
	OrderID string
	Type    NotificationType
	Message string
	Read    bool
	// Published выставляется relay-воркером после доставки в брокер.
	Published bool
	CreatedAt time.Time
}

// Validate проверяет обязательные поля уведомления.
func (n *Notification) Validate() []error {
	var errs []error

	if n.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if n.Message == "" {
		errs = append(errs, ErrNotificationMessageRequired)
	}

	return errs
}
