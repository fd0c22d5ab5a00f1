package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/storage/memory"
)

func newOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:                "order-1",
		CustomerID:        "customer-1",
		Status:            domain.OrderStatusPending,
		ShippingAddressID: "addr-1",
		BillingAddressID:  "addr-1",
		ShippingMethod:    domain.ShippingStandard,
		ShippingMinor:     599,
		TaxMinor:          40,
		SubtotalMinor:     500,
		TotalMinor:        1139,
		PaymentMethod:     "card",
		Items: []domain.OrderItem{
			{ID: "item-1", ProductID: "prod-1", Qty: 5, UnitPriceMinor: 100, CreatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	repo := memory.NewStore().Orders()
	order := newOrder()

	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(order); !errors.Is(err, domain.ErrOrderExists) {
		t.Fatalf("expected ErrOrderExists, got %v", err)
	}

	stored, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != order.ID || len(stored.Items) != 1 {
		t.Fatalf("unexpected stored order: %+v", stored)
	}
}

func TestOrderRepository_GetItem(t *testing.T) {
	repo := memory.NewStore().Orders()
	if err := repo.Create(newOrder()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	item, err := repo.GetItem("order-1", "prod-1")
	if err != nil {
		t.Fatalf("get item failed: %v", err)
	}
	if item.Qty != 5 {
		t.Fatalf("expected qty 5, got %d", item.Qty)
	}

	if _, err := repo.GetItem("order-1", "prod-404"); !errors.Is(err, domain.ErrOrderItemNotFound) {
		t.Fatalf("expected ErrOrderItemNotFound, got %v", err)
	}
	if _, err := repo.GetItem("order-404", "prod-1"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_ListByCustomer(t *testing.T) {
	repo := memory.NewStore().Orders()
	order := newOrder()
	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second := newOrder()
	second.ID = "order-2"
	second.CreatedAt = order.CreatedAt.Add(time.Second)
	if err := repo.Create(second); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	orders, err := repo.ListByCustomer("customer-1", 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != "order-2" {
		t.Fatalf("expected newest first, got %s", orders[0].ID)
	}

	limited, err := repo.ListByCustomer("customer-1", 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 order, got %d", len(limited))
	}
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	repo := memory.NewStore().Orders()
	if err := repo.Create(newOrder()); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	now := time.Now().UTC()

	if err := repo.UpdateStatus("order-1", domain.OrderStatusPending, domain.OrderStatusProcessing, now); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// CAS по устаревшему статусу проигрывает.
	err := repo.UpdateStatus("order-1", domain.OrderStatusPending, domain.OrderStatusCancelled, now)
	if !errors.Is(err, domain.ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}

	err = repo.UpdateStatus("order-404", domain.OrderStatusPending, domain.OrderStatusProcessing, now)
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	stored, _ := repo.Get("order-1")
	if stored.Status != domain.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", stored.Status)
	}
}
