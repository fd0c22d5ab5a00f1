package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/metrics"
)

// Ledger владеет складскими остатками: списание под заказ, пополнение при
// возврате и поднятие LOW_STOCK алертов. Все методы работают внутри чужой
// транзакции — атомарность обеспечивает вызывающий сервис.
type Ledger struct {
	logger  *log.Entry
	metrics *metrics.OrderMetrics
	now     func() time.Time
}

// NewLedger создаёт ledger с метриками по умолчанию.
func NewLedger(logger *log.Entry) *Ledger {
	if logger == nil {
		logger = log.New().WithField("component", "inventory-ledger")
	}
	return &Ledger{
		logger:  logger,
		metrics: metrics.NewOrderMetrics(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewLedgerWithoutMetrics создаёт ledger без метрик (для тестов).
func NewLedgerWithoutMetrics(logger *log.Entry) *Ledger {
	ledger := NewLedger(logger)
	ledger.metrics = nil
	return ledger
}

// Ensure проверяет, что остатка хватает на qty единиц, ничего не меняя.
// Отсутствующая складская запись трактуется как нулевой остаток.
func (l *Ledger) Ensure(tx domain.Tx, productID string, qty int32) error {
	rec, err := tx.Inventory().Get(productID)
	if err != nil {
		if err == domain.ErrInventoryNotFound {
			return &domain.InsufficientInventoryError{ProductID: productID, Requested: qty, Available: 0}
		}
		return fmt.Errorf("read inventory %s: %w", productID, err)
	}
	if rec.QuantityInStock < qty {
		return &domain.InsufficientInventoryError{
			ProductID: productID,
			Requested: qty,
			Available: rec.QuantityInStock,
		}
	}
	return nil
}

// Decrement списывает qty единиц товара. Остаток не может уйти в минус:
// при нехватке возвращается InsufficientInventoryError и транзакция
// вызывающего обязана откатиться. При достижении порога дозаказа поднимается
// LOW_STOCK алерт, дедуплицированный по неразрешённым алертам товара.
func (l *Ledger) Decrement(tx domain.Tx, productID string, qty int32) error {
	rec, err := tx.Inventory().Get(productID)
	if err != nil {
		if err == domain.ErrInventoryNotFound {
			return &domain.InsufficientInventoryError{ProductID: productID, Requested: qty, Available: 0}
		}
		return fmt.Errorf("read inventory %s: %w", productID, err)
	}
	if rec.QuantityInStock < qty {
		return &domain.InsufficientInventoryError{
			ProductID: productID,
			Requested: qty,
			Available: rec.QuantityInStock,
		}
	}

	if err := tx.Inventory().Decrement(productID, qty); err != nil {
		// Под блокировкой строки конфликт невозможен; если он всё же
		// случился, вызывающий перезапустит всю операцию.
		return fmt.Errorf("decrement inventory %s: %w", productID, err)
	}

	remaining := rec.QuantityInStock - qty
	if remaining <= rec.ReorderThreshold {
		created, err := tx.Inventory().CreateAlertIfAbsent(domain.InventoryAlert{
			ID:        uuid.NewString(),
			ProductID: productID,
			Type:      domain.AlertTypeLowStock,
			CreatedAt: l.now(),
		})
		if err != nil {
			return fmt.Errorf("create low stock alert %s: %w", productID, err)
		}
		if created {
			if l.metrics != nil {
				l.metrics.RecordLowStockAlert()
			}
			l.logger.WithFields(log.Fields{
				"product_id": productID,
				"remaining":  remaining,
				"threshold":  rec.ReorderThreshold,
			}).Warn("low stock alert raised")
		}
	}

	return nil
}

// Increment возвращает qty единиц на склад. Верхней границы нет.
// Существующие LOW_STOCK алерты пополнение не разрешает: снятие алерта —
// отдельное решение склада, а не побочный эффект возврата.
func (l *Ledger) Increment(tx domain.Tx, productID string, qty int32) error {
	if err := tx.Inventory().Increment(productID, qty, l.now()); err != nil {
		return fmt.Errorf("increment inventory %s: %w", productID, err)
	}
	return nil
}

// UnresolvedAlerts возвращает неразрешённые алерты для отчётности.
func (l *Ledger) UnresolvedAlerts(store domain.Store, productID string) ([]domain.InventoryAlert, error) {
	alerts, err := store.Inventory().ListUnresolvedAlerts(productID)
	if err != nil {
		return nil, fmt.Errorf("list unresolved alerts: %w", err)
	}
	return alerts, nil
}
