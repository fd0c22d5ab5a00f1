package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/service/inventory"
	"github.com/vladislavdragonenkov/shopcore/internal/storage/memory"
)

func newLedgerStore(stock, threshold int32) *memory.Store {
	store := memory.NewStore()
	store.SeedInventory(domain.InventoryRecord{
		ProductID:        "prod-1",
		QuantityInStock:  stock,
		ReorderThreshold: threshold,
	})
	return store
}

func TestLedger_DecrementHappyPath(t *testing.T) {
	store := newLedgerStore(10, 2)
	ledger := inventory.NewLedgerWithoutMetrics(nil)

	err := store.WithinTx(context.Background(), func(tx domain.Tx) error {
		return ledger.Decrement(tx, "prod-1", 4)
	})
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}

	rec, _ := store.Inventory().Get("prod-1")
	if rec.QuantityInStock != 6 {
		t.Fatalf("expected stock 6, got %d", rec.QuantityInStock)
	}
	alerts, _ := store.Inventory().ListUnresolvedAlerts("prod-1")
	if len(alerts) != 0 {
		t.Fatalf("no alert expected above threshold, got %d", len(alerts))
	}
}

func TestLedger_DecrementInsufficient(t *testing.T) {
	store := newLedgerStore(10, 2)
	ledger := inventory.NewLedgerWithoutMetrics(nil)

	err := store.WithinTx(context.Background(), func(tx domain.Tx) error {
		return ledger.Decrement(tx, "prod-1", 11)
	})
	if !domain.IsInsufficientInventory(err) {
		t.Fatalf("expected InsufficientInventoryError, got %v", err)
	}

	var target *domain.InsufficientInventoryError
	if !errors.As(err, &target) {
		t.Fatal("expected structured context")
	}
	if target.Requested != 11 || target.Available != 10 {
		t.Fatalf("unexpected context: %+v", target)
	}

	// Ошибка откатывает транзакцию: остаток не изменился.
	rec, _ := store.Inventory().Get("prod-1")
	if rec.QuantityInStock != 10 {
		t.Fatalf("stock must stay 10, got %d", rec.QuantityInStock)
	}
}

func TestLedger_DecrementUnknownProduct(t *testing.T) {
	store := memory.NewStore()
	ledger := inventory.NewLedgerWithoutMetrics(nil)

	err := store.WithinTx(context.Background(), func(tx domain.Tx) error {
		return ledger.Decrement(tx, "prod-404", 1)
	})
	if !domain.IsInsufficientInventory(err) {
		t.Fatalf("expected InsufficientInventoryError for missing record, got %v", err)
	}
}

func TestLedger_LowStockAlertDedup(t *testing.T) {
	store := newLedgerStore(10, 8)
	ledger := inventory.NewLedgerWithoutMetrics(nil)

	// Каждое списание держит остаток ниже порога; алерт поднимается один раз.
	for i := 0; i < 3; i++ {
		err := store.WithinTx(context.Background(), func(tx domain.Tx) error {
			return ledger.Decrement(tx, "prod-1", 1)
		})
		if err != nil {
			t.Fatalf("decrement %d failed: %v", i, err)
		}
	}

	alerts, err := store.Inventory().ListUnresolvedAlerts("prod-1")
	if err != nil {
		t.Fatalf("list alerts failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected exactly one unresolved alert, got %d", len(alerts))
	}
	if alerts[0].Type != domain.AlertTypeLowStock {
		t.Fatalf("expected low_stock alert, got %s", alerts[0].Type)
	}
}

func TestLedger_AlertRaisedAtExactThreshold(t *testing.T) {
	store := newLedgerStore(5, 2)
	ledger := inventory.NewLedgerWithoutMetrics(nil)

	// Остаток падает ровно до порога: алерт обязан подняться.
	err := store.WithinTx(context.Background(), func(tx domain.Tx) error {
		return ledger.Decrement(tx, "prod-1", 3)
	})
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}

	alerts, _ := store.Inventory().ListUnresolvedAlerts("prod-1")
	if len(alerts) != 1 {
		t.Fatalf("expected alert at threshold, got %d", len(alerts))
	}
}

func TestLedger_IncrementKeepsAlerts(t *testing.T) {
	store := newLedgerStore(3, 5)
	ledger := inventory.NewLedgerWithoutMetrics(nil)

	err := store.WithinTx(context.Background(), func(tx domain.Tx) error {
		return ledger.Decrement(tx, "prod-1", 1)
	})
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}

	// Пополнение поверх порога не снимает существующий алерт.
	err = store.WithinTx(context.Background(), func(tx domain.Tx) error {
		return ledger.Increment(tx, "prod-1", 100)
	})
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}

	alerts, _ := store.Inventory().ListUnresolvedAlerts("prod-1")
	if len(alerts) != 1 {
		t.Fatalf("expected alert to survive restock, got %d", len(alerts))
	}
	rec, _ := store.Inventory().Get("prod-1")
	if rec.QuantityInStock != 102 {
		t.Fatalf("expected stock 102, got %d", rec.QuantityInStock)
	}
}
