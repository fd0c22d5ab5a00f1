package domain

// allowedTransitions задаёт таблицу разрешённых переходов статусов заказа.
// Терминальные статусы (delivered, cancelled) исходящих переходов не имеют.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// KnownStatus сообщает, входит ли статус в жизненный цикл заказа.
func KnownStatus(status OrderStatus) bool {
	_, ok := allowedTransitions[status]
	return ok
}

// CanTransition проверяет, разрешён ли переход из from в to.
// Любой переход из неизвестного статуса запрещён.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition возвращает InvalidTransitionError, если переход запрещён.
func ValidateTransition(from, to OrderStatus) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// statusMessages — тексты клиентских уведомлений по статусам заказа.
var statusMessages = map[OrderStatus]string{
	OrderStatusProcessing: "Ваш заказ принят в обработку.",
	OrderStatusShipped:    "Ваш заказ передан в доставку.",
	OrderStatusDelivered:  "Ваш заказ доставлен. Спасибо за покупку!",
	OrderStatusCancelled:  "Ваш заказ отменён.",
}

// StatusMessage возвращает текст уведомления для статуса.
// Для статуса вне таблицы возвращается общий текст: напрямую записанный
// в хранилище статус технически может не входить в жизненный цикл.
func StatusMessage(status OrderStatus) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return "Статус вашего заказа обновлён: " + string(status) + "."
}
