package app

import (
	"time"

	"github.com/vladislavdragonenkov/shopcore/internal/messaging/kafka"
)

// StorageDriver выбирает реализацию хранилища ядра.
type StorageDriver string

const (
	// StorageDriverMemory — in-memory хранилище для разработки и тестов.
	StorageDriverMemory StorageDriver = "memory"
	// StorageDriverPostgres — PostgreSQL.
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	// DevSeed наполняет in-memory хранилище dev-фикстурами при старте.
	// Только для memory-драйвера; используется локальной разработкой
	// и cmd/loadtest.
	DevSeed bool

	// KafkaBrokers — список брокеров через запятую; пусто — без Kafka.
	KafkaBrokers      string
	NotificationTopic string

	RelayPollInterval time.Duration
	RelayBatchSize    int
	RelayMaxAttempts  int
	RelayRetryDelay   time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию: in-memory хранилище
// и HTTP API на :8080.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		NotificationTopic:   kafka.TopicNotificationEvents,
		RelayPollInterval:   time.Second,
		RelayBatchSize:      100,
		RelayMaxAttempts:    3,
		RelayRetryDelay:     50 * time.Millisecond,
	}
}
