package kafka

import (
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// NotificationTopicPublisher публикует уведомления покупателей в заданный Kafka topic.
type NotificationTopicPublisher struct {
	producer *Producer
	topic    string
}

// NewNotificationPublisher создаёт Kafka-паблишер для уведомлений покупателей.
func NewNotificationPublisher(producer *Producer, topic string) domain.NotificationSink {
	if topic == "" {
		topic = TopicNotificationEvents
	}
	return &NotificationTopicPublisher{
		producer: producer,
		topic:    topic,
	}
}

func (p *NotificationTopicPublisher) Publish(n domain.Notification) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka notification publisher is not initialized")
	}

	// Ключ — customer_id: все уведомления одного покупателя попадают
	// в одну партицию и сохраняют порядок.
	key := n.CustomerID
	if key == "" {
		key = n.ID
	}

	event := NotificationEvent{
		ID:         n.ID,
		EventType:  eventTypeFor(n.Type),
		CustomerID: n.CustomerID,
		OrderID:    n.OrderID,
		Message:    n.Message,
		Timestamp:  time.Now().UTC(),
	}

	return p.producer.PublishEvent(p.topic, key, event)
}

func eventTypeFor(t domain.NotificationType) EventType {
	switch t {
	case domain.NotificationReturnProcessed:
		return EventTypeReturnProcessed
	default:
		return EventTypeOrderStatusChanged
	}
}

var _ domain.NotificationSink = (*NotificationTopicPublisher)(nil)
