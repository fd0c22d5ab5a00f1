package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

const (
	defaultPollInterval   = 1 * time.Second
	defaultBatchSize      = 100
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
)

var (
	notifyPublishAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopcore_notify_publish_attempts_total",
		Help: "Total number of notification publish attempts grouped by result.",
	}, []string{"result"})

	notifyRelayBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shopcore_notify_relay_backlog",
		Help: "Number of unpublished notifications seen on the last relay poll.",
	})
)

// RelayOptions задаёт параметры relay-воркера.
type RelayOptions struct {
	Logger         *log.Entry
	PollInterval   time.Duration
	BatchSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// Option настраивает Relay.
type Option func(*RelayOptions)

// WithLogger задаёт logger для воркера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *RelayOptions) {
		opts.Logger = logger
	}
}

// WithPollInterval задаёт частоту опроса таблицы уведомлений.
func WithPollInterval(interval time.Duration) Option {
	return func(opts *RelayOptions) {
		opts.PollInterval = interval
	}
}

// WithBatchSize задаёт размер батча неопубликованных уведомлений.
func WithBatchSize(batchSize int) Option {
	return func(opts *RelayOptions) {
		opts.BatchSize = batchSize
	}
}

// WithMaxAttempts задаёт число попыток публикации одного уведомления.
func WithMaxAttempts(maxAttempts int) Option {
	return func(opts *RelayOptions) {
		opts.MaxAttempts = maxAttempts
	}
}

// WithRetryBaseDelay задаёт базовый delay для exponential backoff.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(opts *RelayOptions) {
		opts.RetryBaseDelay = delay
	}
}

// Relay доставляет неопубликованные уведомления из хранилища в брокер.
// Таблица уведомлений служит transactional outbox: Append происходит в одной
// транзакции с бизнес-операцией, а Relay публикует записи после коммита.
type Relay struct {
	store          domain.Store
	sink           domain.NotificationSink
	logger         *log.Entry
	pollInterval   time.Duration
	batchSize      int
	maxAttempts    int
	retryBaseDelay time.Duration
}

// NewRelay создаёт relay-воркер уведомлений.
func NewRelay(store domain.Store, sink domain.NotificationSink, options ...Option) *Relay {
	opts := RelayOptions{
		PollInterval:   defaultPollInterval,
		BatchSize:      defaultBatchSize,
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "notify-relay")
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBaseDelay < 0 {
		opts.RetryBaseDelay = 0
	}

	return &Relay{
		store:          store,
		sink:           sink,
		logger:         logger,
		pollInterval:   opts.PollInterval,
		batchSize:      opts.BatchSize,
		maxAttempts:    opts.MaxAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
	}
}

// Run запускает периодический polling уведомлений до отмены ctx.
func (r *Relay) Run(ctx context.Context) {
	if r.store == nil || r.sink == nil {
		r.logger.Warn("notify relay is disabled: store or sink is nil")
		return
	}

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	r.ProcessOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce выполняет один polling-цикл.
func (r *Relay) ProcessOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	pending, err := r.store.Notifications().PullUnpublished(r.batchSize)
	if err != nil {
		r.logger.WithError(err).Warn("failed to pull unpublished notifications")
		return
	}
	notifyRelayBacklog.Set(float64(len(pending)))
	if len(pending) == 0 {
		return
	}

	for _, n := range pending {
		if ctx.Err() != nil {
			return
		}

		if err := r.publishWithRetry(ctx, n); err != nil {
			// Запись остаётся неопубликованной; следующий цикл попробует снова.
			r.logger.WithError(err).WithFields(log.Fields{
				"notification_id": n.ID,
				"type":            n.Type,
			}).Error("notification publish failed after retries")
			notifyPublishAttempts.WithLabelValues("failed").Inc()
			continue
		}

		if err := r.store.Notifications().MarkPublished(n.ID); err != nil {
			r.logger.WithError(err).WithField("notification_id", n.ID).Warn("failed to mark notification as published")
		}
	}
}

func (r *Relay) publishWithRetry(ctx context.Context, n domain.Notification) error {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := r.sink.Publish(n)
		if err == nil {
			notifyPublishAttempts.WithLabelValues("sent").Inc()
			return nil
		}
		lastErr = err
		notifyPublishAttempts.WithLabelValues("retry_error").Inc()

		if attempt >= r.maxAttempts {
			break
		}

		delay := r.retryBackoff(attempt)
		if delay <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("publish failed after %d attempts: %w", r.maxAttempts, lastErr)
}

func (r *Relay) retryBackoff(attempt int) time.Duration {
	if r.retryBaseDelay <= 0 {
		return 0
	}
	if attempt <= 1 {
		return r.retryBaseDelay
	}

	const maxDuration = time.Duration(1<<63 - 1)
	delay := r.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > maxDuration/2 {
			return maxDuration
		}
		delay *= 2
	}
	return delay
}
