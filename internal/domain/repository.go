package domain

import (
	"context"
	"time"
)

// Tx даёт доступ к репозиториям в рамках одной транзакции.
// Все записи, сделанные через один Tx, видимы атомарно: либо все, либо ни одной.
type Tx interface {
	Orders() OrderRepository
	Inventory() InventoryRepository
	Returns() ReturnRepository
	Notifications() NotificationRepository
	Customers() CustomerDirectory
	Catalog() ProductCatalog
}

// Store — хранилище ядра. Вне транзакции репозитории работают в режиме
// autocommit; WithinTx оборачивает fn в транзакцию с откатом при ошибке.
type Store interface {
	Tx
	// WithinTx выполняет fn атомарно. Ошибка из fn откатывает все записи
	// и возвращается вызывающему без изменений.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ вместе с позициями.
	// Возвращает ErrOrderExists, если ID уже занят.
	Create(order Order) error
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(id string) (Order, error)
	// GetItem возвращает позицию заказа по товару или ErrOrderItemNotFound.
	GetItem(orderID, productID string) (OrderItem, error)
	// ListByCustomer возвращает заказы клиента, новые первыми;
	// limit > 0 ограничивает выборку.
	ListByCustomer(customerID string, limit int) ([]Order, error)
	// UpdateStatus выполняет compare-and-swap статуса заказа.
	// Возвращает ErrOrderNotFound, если заказа нет, и ErrStatusConflict,
	// если текущий статус уже не from.
	UpdateStatus(orderID string, from, to OrderStatus, updatedAt time.Time) error
}

// InventoryRepository описывает требования к хранилищу складских остатков.
type InventoryRepository interface {
	// Get возвращает складскую запись или ErrInventoryNotFound.
	// Внутри транзакции чтение блокирует запись до конца транзакции,
	// что делает последовательность «проверить, затем списать» атомарной.
	Get(productID string) (InventoryRecord, error)
	// Decrement условно уменьшает остаток: quantity_in_stock >= qty.
	// Возвращает ErrStockConflict, если условие не выполнено.
	Decrement(productID string, qty int32) error
	// Increment увеличивает остаток без верхней границы и обновляет
	// дату последнего пополнения.
	Increment(productID string, qty int32, restockedAt time.Time) error
	// CreateAlertIfAbsent создаёт алерт, если неразрешённого алерта той же
	// пары (товар, тип) ещё нет. Возвращает true, если алерт создан.
	CreateAlertIfAbsent(alert InventoryAlert) (bool, error)
	// ListUnresolvedAlerts возвращает неразрешённые алерты;
	// пустой productID — по всем товарам.
	ListUnresolvedAlerts(productID string) ([]InventoryAlert, error)
}

// ReturnRepository описывает требования к хранилищу возвратов.
type ReturnRepository interface {
	// Create сохраняет новый возврат.
	Create(ret Return) error
	// Get возвращает возврат по идентификатору.
	Get(id string) (Return, error)
	// ListByOrder возвращает возвраты по заказу, старые первыми.
	ListByOrder(orderID string) ([]Return, error)
}

// NotificationRepository хранит клиентские уведомления.
// Таблица одновременно служит transactional outbox: relay-воркер публикует
// неопубликованные записи в брокер и помечает их.
type NotificationRepository interface {
	Append(n Notification) error
	ListByCustomer(customerID string, limit int) ([]Notification, error)
	PullUnpublished(limit int) ([]Notification, error)
	MarkPublished(id string) error
}

// CustomerDirectory — справочник клиентов: баланс лояльности и адреса.
type CustomerDirectory interface {
	// Get возвращает клиента или ErrCustomerNotFound.
	Get(id string) (Customer, error)
	// AddLoyaltyPoints начисляет баллы; points >= 0.
	AddLoyaltyPoints(customerID string, points int64) error
	// AddressExists проверяет существование адреса.
	AddressExists(addressID string) (bool, error)
}

// ProductCatalog — read-only каталог товаров.
type ProductCatalog interface {
	// Get возвращает товар или ErrProductNotFound.
	Get(id string) (Product, error)
}
