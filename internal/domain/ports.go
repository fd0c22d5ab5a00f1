package domain

// NotificationSink — внешний приёмник клиентских уведомлений (брокер сообщений).
type NotificationSink interface {
	// Publish передаёт уведомление наружу; реализация должна быть идемпотентной.
	Publish(n Notification) error
}
