package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopcore/internal/health"
	"github.com/vladislavdragonenkov/shopcore/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/shopcore/internal/server"
	"github.com/vladislavdragonenkov/shopcore/internal/service/inventory"
	"github.com/vladislavdragonenkov/shopcore/internal/service/notify"
	"github.com/vladislavdragonenkov/shopcore/internal/service/order"
	"github.com/vladislavdragonenkov/shopcore/internal/service/returns"
	"github.com/vladislavdragonenkov/shopcore/internal/version"
)

// Run собирает и запускает сервис: хранилище, сервисы ядра, HTTP API и
// relay-воркер уведомлений. Блокирует до отмены ctx или фатальной ошибки.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	storage, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if storage.closeFn != nil {
			if err := storage.closeFn(); err != nil {
				logger.WithError(err).Warn("failed to close storage")
			}
		}
	}()

	// Kafka опционален: без брокеров уведомления копятся в хранилище
	// и будут опубликованы после включения relay.
	producer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(producer, logger)

	ledger := inventory.NewLedger(logger.WithField("component", "inventory-ledger"))
	orderSvc := order.NewService(storage.store, ledger, logger.WithField("component", "order-service"))
	returnSvc := returns.NewService(storage.store, ledger, logger.WithField("component", "return-service"))

	healthHandler := health.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", storage.checker)

	handler := server.NewHandler(orderSvc, returnSvc, ledger, storage.store, logger.WithField("component", "http-handler"))
	srv := server.NewServer(cfg.HTTPAddr, handler, healthHandler)

	var wg sync.WaitGroup
	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()

	if producer != nil {
		sink := kafka.NewNotificationPublisher(producer, cfg.NotificationTopic)
		relay := notify.NewRelay(storage.store, sink,
			notify.WithLogger(logger.WithField("component", "notify-relay")),
			notify.WithPollInterval(cfg.RelayPollInterval),
			notify.WithBatchSize(cfg.RelayBatchSize),
			notify.WithMaxAttempts(cfg.RelayMaxAttempts),
			notify.WithRetryBaseDelay(cfg.RelayRetryDelay),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			relay.Run(relayCtx)
		}()
	} else {
		logger.Info("kafka is not configured, notification relay is disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("http shutdown with error")
		}
		stopRelay()
		wg.Wait()
		return ctx.Err()

	case err := <-errCh:
		stopRelay()
		wg.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
