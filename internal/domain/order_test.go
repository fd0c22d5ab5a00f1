package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

// helper для создания валидного заказа с двумя позициями.
func makeOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:                "order-1",
		CustomerID:        "customer-1",
		Status:            domain.OrderStatusPending,
		ShippingAddressID: "addr-1",
		BillingAddressID:  "addr-2",
		ShippingMethod:    domain.ShippingStandard,
		ShippingMinor:     599,
		TaxMinor:          320,
		SubtotalMinor:     4000,
		TotalMinor:        4919,
		PaymentMethod:     "card",
		Items: []domain.OrderItem{
			{ID: "item-1", ProductID: "prod-1", Qty: 3, UnitPriceMinor: 1000, CreatedAt: now},
			{ID: "item-2", ProductID: "prod-2", Qty: 2, UnitPriceMinor: 500, CreatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "no customer",
			mut: func(o *domain.Order) {
				o.CustomerID = ""
			},
		},
		{
			name: "no items",
			mut: func(o *domain.Order) {
				o.Items = nil
			},
		},
		{
			name: "negative total",
			mut: func(o *domain.Order) {
				o.TotalMinor = -1
			},
		},
		{
			name: "qty invalid",
			mut: func(o *domain.Order) {
				o.Items[0].Qty = 0
			},
		},
		{
			name: "price invalid",
			mut: func(o *domain.Order) {
				o.Items[0].UnitPriceMinor = -5
			},
		},
		{
			name: "discount out of range",
			mut: func(o *domain.Order) {
				o.Items[0].DiscountPercent = 101
			},
		},
		{
			name: "duplicate product",
			mut: func(o *domain.Order) {
				o.Items[1].ProductID = o.Items[0].ProductID
			},
		},
		{
			name: "subtotal mismatch",
			mut: func(o *domain.Order) {
				o.SubtotalMinor = 999
			},
		},
		{
			name: "total mismatch",
			mut: func(o *domain.Order) {
				o.TotalMinor = o.TotalMinor + 1
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			tc.mut(&order)
			if errs := order.ValidateInvariants(); len(errs) == 0 {
				t.Fatalf("expected validation errors, got none")
			}
		})
	}
}

func TestOrderItem_Lookup(t *testing.T) {
	order := makeOrder()

	item, err := order.Item("prod-2")
	if err != nil {
		t.Fatalf("item lookup failed: %v", err)
	}
	if item.Qty != 2 {
		t.Fatalf("expected qty 2, got %d", item.Qty)
	}

	if _, err := order.Item("prod-404"); err != domain.ErrOrderItemNotFound {
		t.Fatalf("expected ErrOrderItemNotFound, got %v", err)
	}
}
