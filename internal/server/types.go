package server

import (
	"time"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// CreateOrderRequest — тело POST /v1/orders.
type CreateOrderRequest struct {
	CustomerID        string             `json:"customer_id"`
	ShippingAddressID string             `json:"shipping_address_id"`
	BillingAddressID  string             `json:"billing_address_id"`
	ShippingMethod    string             `json:"shipping_method"`
	PaymentMethod     string             `json:"payment_method"`
	Items             []OrderItemRequest `json:"items"`
}

// OrderItemRequest — позиция заказа в теле запроса.
type OrderItemRequest struct {
	ProductID      string `json:"product_id"`
	Qty            int32  `json:"qty"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
}

// UpdateStatusRequest — тело POST /v1/orders/{orderID}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	// Notify управляет клиентским уведомлением; nil трактуется как true.
	Notify *bool `json:"notify,omitempty"`
}

// CreateReturnRequest — тело POST /v1/returns.
type CreateReturnRequest struct {
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
	Reason    string `json:"reason"`
	// Restock возвращает товар на склад; nil трактуется как true.
	Restock *bool `json:"restock,omitempty"`
	// RefundMinor задаёт сумму возврата явно; nil — посчитать по цене позиции.
	RefundMinor *int64 `json:"refund_minor,omitempty"`
}

// OrderResponse — представление заказа в ответах API.
type OrderResponse struct {
	ID                string              `json:"id"`
	CustomerID        string              `json:"customer_id"`
	Status            string              `json:"status"`
	ShippingAddressID string              `json:"shipping_address_id"`
	BillingAddressID  string              `json:"billing_address_id"`
	ShippingMethod    string              `json:"shipping_method"`
	ShippingMinor     int64               `json:"shipping_minor"`
	TaxMinor          int64               `json:"tax_minor"`
	DiscountMinor     int64               `json:"discount_minor"`
	SubtotalMinor     int64               `json:"subtotal_minor"`
	TotalMinor        int64               `json:"total_minor"`
	PaymentMethod     string              `json:"payment_method"`
	Items             []OrderItemResponse `json:"items"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// OrderItemResponse — позиция заказа в ответах API.
type OrderItemResponse struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	Qty            int32  `json:"qty"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
}

// ReturnResponse — представление возврата в ответах API.
type ReturnResponse struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	ProductID   string    `json:"product_id"`
	Qty         int32     `json:"qty"`
	RefundMinor int64     `json:"refund_minor"`
	Reason      string    `json:"reason,omitempty"`
	Status      string    `json:"status"`
	Restocked   bool      `json:"restocked"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationResponse — представление уведомления в ответах API.
type NotificationResponse struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id,omitempty"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// AlertResponse — представление складского алерта в ответах API.
type AlertResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	AlertType string    `json:"alert_type"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}

func orderResponse(o domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Qty:            item.Qty,
			UnitPriceMinor: item.UnitPriceMinor,
		})
	}
	return OrderResponse{
		ID:                o.ID,
		CustomerID:        o.CustomerID,
		Status:            string(o.Status),
		ShippingAddressID: o.ShippingAddressID,
		BillingAddressID:  o.BillingAddressID,
		ShippingMethod:    string(o.ShippingMethod),
		ShippingMinor:     o.ShippingMinor,
		TaxMinor:          o.TaxMinor,
		DiscountMinor:     o.DiscountMinor,
		SubtotalMinor:     o.SubtotalMinor,
		TotalMinor:        o.TotalMinor,
		PaymentMethod:     o.PaymentMethod,
		Items:             items,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

func returnResponse(r domain.Return) ReturnResponse {
	return ReturnResponse{
		ID:          r.ID,
		OrderID:     r.OrderID,
		ProductID:   r.ProductID,
		Qty:         r.Qty,
		RefundMinor: r.RefundMinor,
		Reason:      r.Reason,
		Status:      string(r.Status),
		Restocked:   r.Restocked,
		CreatedAt:   r.CreatedAt,
	}
}

func notificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		OrderID:   n.OrderID,
		Type:      string(n.Type),
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func alertResponse(a domain.InventoryAlert) AlertResponse {
	return AlertResponse{
		ID:        a.ID,
		ProductID: a.ProductID,
		AlertType: string(a.Type),
		Resolved:  a.Resolved,
		CreatedAt: a.CreatedAt,
	}
}
