package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики ядра заказов и склада.
type OrderMetrics struct {
	// Счётчики операций
	ordersCreated     prometheus.Counter
	ordersFailed      *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	returnsProcessed  prometheus.Counter
	returnsRejected   prometheus.Counter

	// Складские события
	lowStockAlerts  prometheus.Counter
	conflictRetries prometheus.Counter

	// Лояльность
	loyaltyPointsAwarded prometheus.Counter

	// Гистограммы
	orderValue    prometheus.Histogram
	orderDuration prometheus.Histogram
}

// NewOrderMetrics создаёт метрики ядра в default registerer.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shopcore_orders_created_total",
			Help: "Total number of orders created successfully",
		}),
		ordersFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shopcore_orders_failed_total",
			Help: "Total number of failed order creations grouped by reason",
		}, []string{"reason"}),
		statusTransitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shopcore_order_status_transitions_total",
			Help: "Total number of applied order status transitions grouped by target status",
		}, []string{"to"}),
		returnsProcessed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shopcore_returns_processed_total",
			Help: "Total number of processed returns",
		}),
		returnsRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shopcore_returns_rejected_total",
			Help: "Total number of rejected returns",
		}),
		lowStockAlerts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shopcore_low_stock_alerts_total",
			Help: "Total number of low stock alerts raised",
		}),
		conflictRetries: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shopcore_conflict_retries_total",
			Help: "Total number of optimistic concurrency retries",
		}),
		loyaltyPointsAwarded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shopcore_loyalty_points_awarded_total",
			Help: "Total number of loyalty points awarded",
		}),
		orderValue: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "shopcore_order_value_minor",
			Help:    "Order total in minor currency units",
			Buckets: []float64{500, 1000, 2500, 5000, 10000, 25000, 50000, 100000, 250000},
		}),
		orderDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "shopcore_order_create_duration_seconds",
			Help:    "Duration of order creation in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов и фиксирует сумму.
func (m *OrderMetrics) RecordOrderCreated(totalMinor int64) {
	m.ordersCreated.Inc()
	m.orderValue.Observe(float64(totalMinor))
}

// RecordOrderFailed увеличивает счётчик неудачных созданий по причине.
func (m *OrderMetrics) RecordOrderFailed(reason string) {
	m.ordersFailed.WithLabelValues(reason).Inc()
}

// RecordStatusTransition увеличивает счётчик применённых переходов статуса.
func (m *OrderMetrics) RecordStatusTransition(to string) {
	m.statusTransitions.WithLabelValues(to).Inc()
}

// RecordReturnProcessed увеличивает счётчик обработанных возвратов.
func (m *OrderMetrics) RecordReturnProcessed() {
	m.returnsProcessed.Inc()
}

// RecordReturnRejected увеличивает счётчик отклонённых возвратов.
func (m *OrderMetrics) RecordReturnRejected() {
	m.returnsRejected.Inc()
}

// RecordLowStockAlert увеличивает счётчик складских алертов.
func (m *OrderMetrics) RecordLowStockAlert() {
	m.lowStockAlerts.Inc()
}

// RecordConflictRetry увеличивает счётчик повторов из-за конкурентных конфликтов.
func (m *OrderMetrics) RecordConflictRetry() {
	m.conflictRetries.Inc()
}

// RecordLoyaltyPoints фиксирует начисленные баллы.
func (m *OrderMetrics) RecordLoyaltyPoints(points int64) {
	m.loyaltyPointsAwarded.Add(float64(points))
}

// RecordOrderDuration записывает время создания заказа.
func (m *OrderMetrics) RecordOrderDuration(duration time.Duration) {
	m.orderDuration.Observe(duration.Seconds())
}
