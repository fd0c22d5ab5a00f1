package order

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/metrics"
	"github.com/vladislavdragonenkov/shopcore/internal/service/inventory"
)

// maxConflictRetries ограничивает внутренние повторы при конкурентных
// конфликтах. Повтор — деталь реализации атомарности, наружу конфликт
// не виден.
const maxConflictRetries = 3

// ItemRequest — типизированная позиция запроса на создание заказа.
type ItemRequest struct {
	ProductID      string
	Qty            int32
	UnitPriceMinor int64
}

// CreateOrderRequest — запрос на создание заказа на границе сервиса.
type CreateOrderRequest struct {
	CustomerID        string
	ShippingAddressID string
	BillingAddressID  string
	ShippingMethod    domain.ShippingMethod
	PaymentMethod     string
	Items             []ItemRequest
}

// Service оркестрирует создание заказа: цены, проверка остатков, запись,
// начисление баллов — всё в одной транзакции хранилища.
type Service struct {
	store   domain.Store
	ledger  *inventory.Ledger
	logger  *log.Entry
	metrics *metrics.OrderMetrics
	now     func() time.Time
}

// NewService конструирует сервис заказов.
func NewService(store domain.Store, ledger *inventory.Ledger, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
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

// CreateOrder атомарно создаёт заказ: либо существуют заказ, все его позиции,
// все складские списания и начисленные баллы, либо ничего. Конкурентный
// конфликт по остаткам перезапускает всю попытку целиком.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (string, error) {
	start := s.now()

	if err := validateCreateRequest(req); err != nil {
		s.recordFailure("validation")
		return "", err
	}

	var orderID string
	var lastErr error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		if attempt > 0 {
			if s.metrics != nil {
				s.metrics.RecordConflictRetry()
			}
			s.logger.WithField("attempt", attempt).Debug("retrying order creation after conflict")
		}

		id, err := s.createOrderOnce(ctx, req)
		if err == nil {
			orderID = id
			lastErr = nil
			break
		}
		lastErr = err
		if !domain.IsConflict(err) {
			break
		}
	}

	if lastErr != nil {
		s.recordFailure(failureReason(lastErr))
		return "", lastErr
	}

	if s.metrics != nil {
		s.metrics.RecordOrderDuration(s.now().Sub(start))
	}
	return orderID, nil
}

func (s *Service) createOrderOnce(ctx context.Context, req CreateOrderRequest) (string, error) {
	now := s.now()
	orderID := uuid.NewString()

	// Суммы считаются из запроса до транзакции: они детерминированы.
	shipping := domain.ShippingCostMinor(req.ShippingMethod)
	var subtotal, points int64
	for _, item := range req.Items {
		subtotal += int64(item.Qty) * item.UnitPriceMinor
		points += domain.LoyaltyPointsForItem(item.Qty, item.UnitPriceMinor)
	}
	tax := domain.TaxMinorFor(subtotal)

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.OrderItem{
			ID:             uuid.NewString(),
			ProductID:      item.ProductID,
			Qty:            item.Qty,
			UnitPriceMinor: item.UnitPriceMinor,
			CreatedAt:      now,
		})
	}

	order := domain.Order{
		ID:                orderID,
		CustomerID:        req.CustomerID,
		Status:            domain.OrderStatusPending,
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		ShippingMethod:    req.ShippingMethod,
		ShippingMinor:     shipping,
		TaxMinor:          tax,
		SubtotalMinor:     subtotal,
		TotalMinor:        subtotal + shipping + tax,
		PaymentMethod:     req.PaymentMethod,
		Items:             items,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return "", errs[0]
	}

	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		if _, err := tx.Customers().Get(req.CustomerID); err != nil {
			return err
		}
		for _, addressID := range []string{req.ShippingAddressID, req.BillingAddressID} {
			exists, err := tx.Customers().AddressExists(addressID)
			if err != nil {
				return fmt.Errorf("check address %s: %w", addressID, err)
			}
			if !exists {
				return domain.ErrAddressNotFound
			}
		}
		for _, item := range req.Items {
			product, err := tx.Catalog().Get(item.ProductID)
			if err != nil {
				return err
			}
			if !product.Active {
				return domain.ErrProductInactive
			}
		}

		// Остатки проверяются по всем позициям до первой мутации.
		// Чтение блокирует строки в детерминированном порядке, поэтому
		// встречные заказы не взаимоблокируются.
		for _, item := range sortedByProduct(req.Items) {
			if err := s.ledger.Ensure(tx, item.ProductID, item.Qty); err != nil {
				return err
			}
		}

		if err := tx.Orders().Create(order); err != nil {
			return fmt.Errorf("persist order: %w", err)
		}
		for _, item := range sortedByProduct(req.Items) {
			if err := s.ledger.Decrement(tx, item.ProductID, item.Qty); err != nil {
				return err
			}
		}
		if err := tx.Customers().AddLoyaltyPoints(req.CustomerID, points); err != nil {
			return fmt.Errorf("award loyalty points: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated(order.TotalMinor)
		s.metrics.RecordLoyaltyPoints(points)
	}
	s.logger.WithFields(log.Fields{
		"order_id":    orderID,
		"customer_id": req.CustomerID,
		"total_minor": order.TotalMinor,
		"points":      points,
		"items":       len(order.Items),
	}).Info("order created")

	return orderID, nil
}

// UpdateStatus переводит заказ в новый статус по таблице переходов.
// Ошибка не меняет состояние. Конкурентные обновления сериализуются
// compare-and-swap'ом по (orderID, текущий статус).
func (s *Service) UpdateStatus(ctx context.Context, orderID string, newStatus domain.OrderStatus, notify bool) error {
	var lastErr error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		if attempt > 0 && s.metrics != nil {
			s.metrics.RecordConflictRetry()
		}
		lastErr = s.updateStatusOnce(ctx, orderID, newStatus, notify)
		if lastErr == nil || !domain.IsConflict(lastErr) {
			break
		}
	}
	return lastErr
}

func (s *Service) updateStatusOnce(ctx context.Context, orderID string, newStatus domain.OrderStatus, notify bool) error {
	now := s.now()

	err := s.store.WithinTx(ctx, func(tx domain.Tx) error {
		order, err := tx.Orders().Get(orderID)
		if err != nil {
			return err
		}
		if err := domain.ValidateTransition(order.Status, newStatus); err != nil {
			return err
		}
		if err := tx.Orders().UpdateStatus(orderID, order.Status, newStatus, now); err != nil {
			return err
		}
		if notify {
			return tx.Notifications().Append(domain.Notification{
				ID:         uuid.NewString(),
				CustomerID: order.CustomerID,
				OrderID:    orderID,
				Type:       domain.NotificationOrderStatus,
				Message:    domain.StatusMessage(newStatus),
				CreatedAt:  now,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordStatusTransition(string(newStatus))
	}
	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"status":   newStatus,
	}).Info("order status updated")
	return nil
}

// Get возвращает заказ с позициями.
func (s *Service) Get(_ context.Context, orderID string) (domain.Order, error) {
	return s.store.Orders().Get(orderID)
}

// ListByCustomer возвращает заказы клиента, новые первыми.
func (s *Service) ListByCustomer(_ context.Context, customerID string, limit int) ([]domain.Order, error) {
	return s.store.Orders().ListByCustomer(customerID, limit)
}

func validateCreateRequest(req CreateOrderRequest) error {
	if req.CustomerID == "" {
		return domain.ErrCustomerRequired
	}
	if len(req.Items) == 0 {
		return domain.ErrItemsRequired
	}
	seen := make(map[string]struct{}, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID == "" {
			return domain.ErrItemProductRequired
		}
		if item.Qty <= 0 {
			return domain.ErrItemQtyInvalid
		}
		if item.UnitPriceMinor < 0 {
			return domain.ErrItemPriceInvalid
		}
		if _, dup := seen[item.ProductID]; dup {
			return domain.ErrItemDuplicateProduct
		}
		seen[item.ProductID] = struct{}{}
	}
	return nil
}

// sortedByProduct возвращает копию позиций, отсортированную по товару.
// Фиксированный порядок захвата строк исключает взаимоблокировки.
func sortedByProduct(items []ItemRequest) []ItemRequest {
	sorted := make([]ItemRequest, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })
	return sorted
}

func (s *Service) recordFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordOrderFailed(reason)
	}
}

func failureReason(err error) string {
	switch {
	case domain.IsInsufficientInventory(err):
		return "insufficient_inventory"
	case domain.IsNotFound(err):
		return "not_found"
	case domain.IsConflict(err):
		return "conflict"
	default:
		return "internal"
	}
}
