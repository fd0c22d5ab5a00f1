package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderStatusChanged EventType = "order.status_changed"

	// Return события
	EventTypeReturnProcessed EventType = "return.processed"
)

// TopicNotificationEvents — topic клиентских уведомлений по умолчанию.
const TopicNotificationEvents = "shopcore.notification.events"

// NotificationEvent представляет событие уведомления покупателя
type NotificationEvent struct {
	ID         string    `json:"id"`
	EventType  EventType `json:"event_type"`
	CustomerID string    `json:"customer_id"`
	OrderID    string    `json:"order_id,omitempty"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}
