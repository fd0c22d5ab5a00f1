package app

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/health"
	"github.com/vladislavdragonenkov/shopcore/internal/storage/memory"
	"github.com/vladislavdragonenkov/shopcore/internal/storage/postgres"
)

// storageRuntime — выбранное хранилище плюс его жизненный цикл.
type storageRuntime struct {
	store   domain.Store
	checker health.Checker
	closeFn func() error
}

// initStorage поднимает хранилище согласно конфигурации.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (*storageRuntime, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		store := memory.NewStore()
		if cfg.DevSeed {
			seedDevFixtures(store)
			logger.Info("dev fixtures seeded into in-memory storage")
		}
		logger.Info("using in-memory storage")
		return &storageRuntime{
			store: store,
			checker: health.NewSimpleChecker("storage", func() error {
				return nil
			}),
		}, nil

	case StorageDriverPostgres:
		if cfg.DevSeed {
			logger.Warn("dev seed is supported only by the memory driver, ignoring")
		}
		pg, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := pg.EnsureSchema(ctx); err != nil {
				_ = pg.Close()
				return nil, fmt.Errorf("apply postgres migrations: %w", err)
			}
		}
		logger.Info("using postgres storage")
		return &storageRuntime{
			store:   pg,
			checker: health.NewPingChecker("storage", 3*time.Second, pg.Ping),
			closeFn: pg.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}

// Идентификаторы dev-фикстур согласованы со значениями по умолчанию
// cmd/loadtest: сервис с включённым DevSeed готов принимать его сценарии.
const (
	devCustomerID = "load-customer"
	devAddressID  = "load-address"
	devProductID  = "load-product"
)

func seedDevFixtures(store *memory.Store) {
	store.SeedCustomer(domain.Customer{ID: devCustomerID, Name: "Dev Customer", Email: "dev@example.com"})
	store.SeedAddress(domain.Address{ID: devAddressID, CustomerID: devCustomerID})
	store.SeedProduct(domain.Product{ID: devProductID, SKU: "DEV-1", Name: "Dev Product", PriceMinor: 1000, Active: true})
	store.SeedInventory(domain.InventoryRecord{ProductID: devProductID, QuantityInStock: 1_000_000, ReorderThreshold: 100})
}
