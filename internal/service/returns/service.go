package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/metrics"
	"github.com/vladislavdragonenkov/shopcore/internal/service/inventory"
)

// Request — запрос на возврат позиции заказа.
type Request struct {
	OrderID   string
	ProductID string
	Qty       int32
	Reason    string
	// Restock возвращает товар на склад; по умолчанию на границе API — true.
	Restock bool
	// RefundMinor задаёт сумму возврата явно; nil — посчитать по цене позиции.
	RefundMinor *int64
}

// Service обрабатывает возвраты: проверка количества, запись возврата,
// пополнение склада и уведомление клиента — атомарно.
type Service struct {
	store   domain.Store
	ledger  *inventory.Ledger
	logger  *log.Entry
	metrics *metrics.OrderMetrics
	now     func() time.Time
}

// NewService конструирует сервис возвратов.
func NewService(store domain.Store, ledger *inventory.Ledger, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "return-service")
	}
	return &Service{
		store:   store,
		ledger:  ledger,
		logger:  logger,
		metrics: metrics.NewOrderMetrics(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewServiceWithoutMetrics конструирует сервис без метрик (для тестов).
func NewServiceWithoutMetrics(store domain.Store, ledger *inventory.Ledger, logger *log.Entry) *Service {
	svc := NewService(store, ledger, logger)
	svc.metrics = nil
	return svc
}

// ProcessReturn атомарно оформляет возврат. Отклонённый возврат не оставляет
// никаких следов: ни записи возврата, ни пополнения склада, ни уведомления.
func (s *Service) ProcessReturn(ctx context.Context, req Request) (string, error) {
	if req.OrderID == "" {
		return "", domain.ErrOrderIDRequired
	}
	if req.ProductID == "" {
		return "", domain.ErrProductRequired
	}
	if req.Qty <= 0 {
		return "", domain.ErrReturnQtyInvalid
	}

	now := s.now()
	returnID := uuid.NewString()

	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		// Пары (заказ, товар) нет — значит нет и позиции для возврата.
		order, err := tx.Orders().Get(req.OrderID)
		if err != nil {
			if err == domain.ErrOrderNotFound {
				return domain.ErrOrderItemNotFound
			}
			return err
		}
		item, err := order.Item(req.ProductID)
		if err != nil {
			return err
		}

		if req.Qty > item.Qty {
			return &domain.ExcessiveReturnQuantityError{Requested: req.Qty, Original: item.Qty}
		}

		refund := domain.RefundMinorFor(req.Qty, item.UnitPriceMinor)
		if req.RefundMinor != nil {
			refund = *req.RefundMinor
		}

		ret := domain.Return{
			ID:          returnID,
			OrderID:     req.OrderID,
			OrderItemID: item.ID,
			ProductID:   req.ProductID,
			Qty:         req.Qty,
			RefundMinor: refund,
			Reason:      req.Reason,
			Status:      domain.ReturnStatusProcessed,
			Restocked:   req.Restock,
			CreatedAt:   now,
		}
		if errs := ret.Validate(); len(errs) > 0 {
			return errs[0]
		}
		if err := tx.Returns().Create(ret); err != nil {
			return fmt.Errorf("persist return: %w", err)
		}

		if req.Restock {
			if err := s.ledger.Increment(tx, req.ProductID, req.Qty); err != nil {
				return err
			}
		}

		return tx.Notifications().Append(domain.Notification{
			ID:         uuid.NewString(),
			CustomerID: order.CustomerID,
			OrderID:    req.OrderID,
			Type:       domain.NotificationReturnProcessed,
			Message:    refundMessage(req.Qty, refund),
			CreatedAt:  now,
		})
	})
	if err != nil {
		if s.metrics != nil && (domain.IsExcessiveReturnQuantity(err) || domain.IsNotFound(err)) {
			s.metrics.RecordReturnRejected()
		}
		return "", err
	}

	if s.metrics != nil {
		s.metrics.RecordReturnProcessed()
	}
	s.logger.WithFields(log.Fields{
		"return_id":  returnID,
		"order_id":   req.OrderID,
		"product_id": req.ProductID,
		"qty":        req.Qty,
		"restock":    req.Restock,
	}).Info("return processed")

	return returnID, nil
}

// ListByOrder возвращает возвраты по заказу.
func (s *Service) ListByOrder(_ context.Context, orderID string) ([]domain.Return, error) {
	return s.store.Returns().ListByOrder(orderID)
}

// refundMessage формирует клиентский текст о возврате средств.
func refundMessage(qty int32, refundMinor int64) string {
	return fmt.Sprintf("Возврат обработан: %d шт., сумма $%d.%02d будет возвращена на ваш счёт.",
		qty, refundMinor/100, refundMinor%100)
}
