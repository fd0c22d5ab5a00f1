package domain

import "time"

// Customer — клиент магазина с балансом баллов лояльности.
// В рамках ядра баланс только растёт: начисляет его исключительно
// создание заказа, путь списания сюда не входит.
type Customer struct {
	ID            string
	Email         string
	Name          string
	LoyaltyPoints int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Address — адрес доставки или оплаты. Ядро проверяет только существование.
type Address struct {
	ID         string
	CustomerID string
	Line       string
	City       string
	Country    string
	PostalCode string
}

// Product — read-only представление товара из каталога.
type Product struct {
	ID         string
	SKU        string
	Name       string
	PriceMinor int64
	CategoryID string
	Active     bool
}
