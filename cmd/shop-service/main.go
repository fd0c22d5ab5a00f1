package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopcore/internal/app"
)

const (
	envHTTPAddr            = "SHOPCORE_HTTP_ADDR"
	envStorageDriver       = "SHOPCORE_STORAGE_DRIVER"
	envPostgresDSN         = "SHOPCORE_POSTGRES_DSN"
	envPostgresAutoMigrate = "SHOPCORE_POSTGRES_AUTO_MIGRATE"
	envDevSeed             = "SHOPCORE_DEV_SEED"
	envKafkaBrokers        = "SHOPCORE_KAFKA_BROKERS"
	envNotificationTopic   = "SHOPCORE_NOTIFICATION_TOPIC"
	envRelayPollInterval   = "SHOPCORE_RELAY_POLL_INTERVAL"
	envRelayBatchSize      = "SHOPCORE_RELAY_BATCH_SIZE"
	envRelayMaxAttempts    = "SHOPCORE_RELAY_MAX_ATTEMPTS"
	envRelayRetryDelay     = "SHOPCORE_RELAY_RETRY_DELAY"
)

// envLookup абстрагирует os.LookupEnv для тестируемости чтения конфигурации.
type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

// readConfigFromEnv формирует конфигурацию приложения из переменных окружения.
// Некорректные значения не валят процесс: поле остаётся со значением по
// умолчанию, а причина попадает в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	warn := func(key, value, reason string) {
		warnings = append(warnings, fmt.Sprintf("%s=%q ignored: %s", key, value, reason))
	}

	if v, ok := lookup(envHTTPAddr); ok && strings.TrimSpace(v) != "" {
		cfg.HTTPAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup(envStorageDriver); ok && strings.TrimSpace(v) != "" {
		cfg.StorageDriver = app.StorageDriver(strings.ToLower(strings.TrimSpace(v)))
	}
	if v, ok := lookup(envPostgresDSN); ok {
		cfg.PostgresDSN = strings.TrimSpace(v)
	}
	if v, ok := lookup(envPostgresAutoMigrate); ok {
		if parsed, err := parseBool(v); err != nil {
			warn(envPostgresAutoMigrate, v, err.Error())
		} else {
			cfg.PostgresAutoMigrate = parsed
		}
	}
	if v, ok := lookup(envDevSeed); ok {
		if parsed, err := parseBool(v); err != nil {
			warn(envDevSeed, v, err.Error())
		} else {
			cfg.DevSeed = parsed
		}
	}
	if v, ok := lookup(envKafkaBrokers); ok {
		cfg.KafkaBrokers = strings.TrimSpace(v)
	}
	if v, ok := lookup(envNotificationTopic); ok && strings.TrimSpace(v) != "" {
		cfg.NotificationTopic = strings.TrimSpace(v)
	}
	if v, ok := lookup(envRelayPollInterval); ok {
		if parsed, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0"); err != nil {
			warn(envRelayPollInterval, v, err.Error())
		} else {
			cfg.RelayPollInterval = parsed
		}
	}
	if v, ok := lookup(envRelayBatchSize); ok {
		if parsed, err := parseInt(v, func(n int) bool { return n > 0 }, "must be > 0"); err != nil {
			warn(envRelayBatchSize, v, err.Error())
		} else {
			cfg.RelayBatchSize = parsed
		}
	}
	if v, ok := lookup(envRelayMaxAttempts); ok {
		if parsed, err := parseInt(v, func(n int) bool { return n > 0 }, "must be > 0"); err != nil {
			warn(envRelayMaxAttempts, v, err.Error())
		} else {
			cfg.RelayMaxAttempts = parsed
		}
	}
	if v, ok := lookup(envRelayRetryDelay); ok {
		if parsed, err := parseDuration(v, func(d time.Duration) bool { return d >= 0 }, "must be >= 0"); err != nil {
			warn(envRelayRetryDelay, v, err.Error())
		} else {
			cfg.RelayRetryDelay = parsed
		}
	}

	return cfg, warnings
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value")
	}
}

func parseInt(value string, valid func(int) bool, reason string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid int value")
	}
	if !valid(parsed) {
		return 0, errors.New(reason)
	}
	return parsed, nil
}

func parseDuration(value string, valid func(time.Duration) bool, reason string) (time.Duration, error) {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid duration value")
	}
	if !valid(parsed) {
		return 0, errors.New(reason)
	}
	return parsed, nil
}

func main() {
	setupLogger()

	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, w := range warnings {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr": cfg.HTTPAddr,
		"storage":   cfg.StorageDriver,
	}).Info("запускаем shopcore")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("shopcore остановлен")
}
