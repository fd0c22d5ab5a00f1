package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/storage/memory"
)

func seededStore() *memory.Store {
	store := memory.NewStore()
	store.SeedInventory(domain.InventoryRecord{
		ProductID:        "prod-1",
		QuantityInStock:  10,
		ReorderThreshold: 2,
	})
	store.SeedCustomer(domain.Customer{ID: "customer-1", Name: "Test"})
	return store
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	store := seededStore()

	err := store.WithinTx(context.Background(), func(tx domain.Tx) error {
		if err := tx.Inventory().Decrement("prod-1", 3); err != nil {
			return err
		}
		return tx.Customers().AddLoyaltyPoints("customer-1", 5)
	})
	if err != nil {
		t.Fatalf("tx failed: %v", err)
	}

	rec, err := store.Inventory().Get("prod-1")
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if rec.QuantityInStock != 7 {
		t.Fatalf("expected stock 7, got %d", rec.QuantityInStock)
	}
	customer, err := store.Customers().Get("customer-1")
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if customer.LoyaltyPoints != 5 {
		t.Fatalf("expected 5 points, got %d", customer.LoyaltyPoints)
	}
}

func TestWithinTx_RollsBackAllWritesOnError(t *testing.T) {
	store := seededStore()
	boom := errors.New("boom")

	err := store.WithinTx(context.Background(), func(tx domain.Tx) error {
		if err := tx.Inventory().Decrement("prod-1", 3); err != nil {
			return err
		}
		if err := tx.Customers().AddLoyaltyPoints("customer-1", 5); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	rec, _ := store.Inventory().Get("prod-1")
	if rec.QuantityInStock != 10 {
		t.Fatalf("rollback expected stock 10, got %d", rec.QuantityInStock)
	}
	customer, _ := store.Customers().Get("customer-1")
	if customer.LoyaltyPoints != 0 {
		t.Fatalf("rollback expected 0 points, got %d", customer.LoyaltyPoints)
	}
}

func TestWithinTx_CancelledContext(t *testing.T) {
	store := seededStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.WithinTx(ctx, func(tx domain.Tx) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// Конкурентные транзакции сериализуются: суммарное списание никогда
// не уводит остаток в минус.
func TestWithinTx_ConcurrentDecrements(t *testing.T) {
	store := seededStore()

	var wg sync.WaitGroup
	succeeded := make(chan struct{}, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.WithinTx(context.Background(), func(tx domain.Tx) error {
				return tx.Inventory().Decrement("prod-1", 3)
			})
			if err == nil {
				succeeded <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(succeeded)

	var wins int
	for range succeeded {
		wins++
	}
	// При остатке 10 и списаниях по 3 пройти могут максимум три транзакции.
	if wins > 3 {
		t.Fatalf("expected at most 3 successful decrements, got %d", wins)
	}

	rec, _ := store.Inventory().Get("prod-1")
	if rec.QuantityInStock < 0 {
		t.Fatalf("stock went negative: %d", rec.QuantityInStock)
	}
	if rec.QuantityInStock != 10-int32(wins)*3 {
		t.Fatalf("expected stock %d, got %d", 10-wins*3, rec.QuantityInStock)
	}
}

func TestAutocommitSeesCommittedTx(t *testing.T) {
	store := seededStore()
	repo := store.Inventory()

	err := store.WithinTx(context.Background(), func(tx domain.Tx) error {
		return tx.Inventory().Increment("prod-1", 5, time.Now().UTC())
	})
	if err != nil {
		t.Fatalf("tx failed: %v", err)
	}

	// Репозиторий, созданный до транзакции, видит её результат.
	rec, err := repo.Get("prod-1")
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if rec.QuantityInStock != 15 {
		t.Fatalf("expected stock 15, got %d", rec.QuantityInStock)
	}
}
