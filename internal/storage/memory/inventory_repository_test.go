package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/storage/memory"
)

func TestInventoryRepository_DecrementIncrement(t *testing.T) {
	store := memory.NewStore()
	store.SeedInventory(domain.InventoryRecord{ProductID: "prod-1", QuantityInStock: 10})
	repo := store.Inventory()

	if err := repo.Decrement("prod-1", 4); err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	rec, _ := repo.Get("prod-1")
	if rec.QuantityInStock != 6 {
		t.Fatalf("expected stock 6, got %d", rec.QuantityInStock)
	}

	// Списание больше остатка не проходит и ничего не меняет.
	if err := repo.Decrement("prod-1", 7); !errors.Is(err, domain.ErrStockConflict) {
		t.Fatalf("expected ErrStockConflict, got %v", err)
	}
	rec, _ = repo.Get("prod-1")
	if rec.QuantityInStock != 6 {
		t.Fatalf("stock must stay 6, got %d", rec.QuantityInStock)
	}

	restockedAt := time.Now().UTC()
	if err := repo.Increment("prod-1", 100, restockedAt); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	rec, _ = repo.Get("prod-1")
	if rec.QuantityInStock != 106 {
		t.Fatalf("expected stock 106, got %d", rec.QuantityInStock)
	}
	if !rec.LastRestockDate.Equal(restockedAt) {
		t.Fatalf("expected restock date to be updated")
	}
}

func TestInventoryRepository_UnknownProduct(t *testing.T) {
	repo := memory.NewStore().Inventory()

	if _, err := repo.Get("prod-404"); !errors.Is(err, domain.ErrInventoryNotFound) {
		t.Fatalf("expected ErrInventoryNotFound, got %v", err)
	}
	if err := repo.Decrement("prod-404", 1); !errors.Is(err, domain.ErrInventoryNotFound) {
		t.Fatalf("expected ErrInventoryNotFound, got %v", err)
	}
	if err := repo.Increment("prod-404", 1, time.Now()); !errors.Is(err, domain.ErrInventoryNotFound) {
		t.Fatalf("expected ErrInventoryNotFound, got %v", err)
	}
}

func TestInventoryRepository_AlertDedup(t *testing.T) {
	repo := memory.NewStore().Inventory()
	now := time.Now().UTC()

	created, err := repo.CreateAlertIfAbsent(domain.InventoryAlert{
		ID: "alert-1", ProductID: "prod-1", Type: domain.AlertTypeLowStock, CreatedAt: now,
	})
	if err != nil || !created {
		t.Fatalf("expected first alert to be created, got created=%v err=%v", created, err)
	}

	// Повторный алерт той же пары (товар, тип) дедуплицируется.
	created, err = repo.CreateAlertIfAbsent(domain.InventoryAlert{
		ID: "alert-2", ProductID: "prod-1", Type: domain.AlertTypeLowStock, CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("dedup create failed: %v", err)
	}
	if created {
		t.Fatal("expected duplicate alert to be suppressed")
	}

	alerts, err := repo.ListUnresolvedAlerts("prod-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected exactly one unresolved alert, got %d", len(alerts))
	}

	// Алерт по другому товару создаётся независимо.
	created, err = repo.CreateAlertIfAbsent(domain.InventoryAlert{
		ID: "alert-3", ProductID: "prod-2", Type: domain.AlertTypeLowStock, CreatedAt: now,
	})
	if err != nil || !created {
		t.Fatalf("expected alert for another product, got created=%v err=%v", created, err)
	}

	all, err := repo.ListUnresolvedAlerts("")
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 unresolved alerts, got %d", len(all))
	}
}
