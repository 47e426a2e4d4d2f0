package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// StorageDriver выбирает реализацию хранилища.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска сервиса.
type Config struct {
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	// KafkaBrokers — comma-separated список брокеров. Пустое значение
	// отключает публикацию событий и outbox worker.
	KafkaBrokers string
	// KafkaConsumerGroup включает чтение топика событий заказов: пустое
	// значение оставляет процесс write-only относительно Kafka.
	KafkaConsumerGroup string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
}

// DefaultConfig возвращает настройки для локального запуска без внешних
// зависимостей: in-memory хранилище, без Kafka.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   5,
		OutboxRetryDelay:    100 * time.Millisecond,
	}
}

// ConfigFromEnv строит конфигурацию из переменных окружения MARKET_*.
// Наличие MARKET_POSTGRES_DSN переключает хранилище на postgres;
// MARKET_STORAGE_DRIVER позволяет переопределить выбор явно.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.MetricsAddr = envString("MARKET_METRICS_ADDR", cfg.MetricsAddr)
	cfg.PostgresDSN = envString("MARKET_POSTGRES_DSN", "")
	if cfg.PostgresDSN != "" {
		cfg.StorageDriver = StorageDriverPostgres
	}
	if driver := envString("MARKET_STORAGE_DRIVER", ""); driver != "" {
		cfg.StorageDriver = StorageDriver(strings.ToLower(driver))
	}
	cfg.PostgresAutoMigrate = envBool("MARKET_POSTGRES_AUTO_MIGRATE", cfg.PostgresAutoMigrate)
	cfg.KafkaBrokers = envString("MARKET_KAFKA_BROKERS", "")
	cfg.KafkaConsumerGroup = envString("MARKET_KAFKA_CONSUMER_GROUP", "")
	cfg.OutboxPollInterval = envDuration("MARKET_OUTBOX_POLL_INTERVAL", cfg.OutboxPollInterval)
	cfg.OutboxBatchSize = envInt("MARKET_OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxMaxAttempts = envInt("MARKET_OUTBOX_MAX_ATTEMPTS", cfg.OutboxMaxAttempts)
	cfg.OutboxRetryDelay = envDuration("MARKET_OUTBOX_RETRY_DELAY", cfg.OutboxRetryDelay)

	return cfg
}

func envString(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.WithField("var", name).WithError(err).Warn("invalid boolean env value, using default")
		return fallback
	}
	return v
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.WithField("var", name).WithError(err).Warn("invalid integer env value, using default")
		return fallback
	}
	return v
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.WithField("var", name).WithError(err).Warn("invalid duration env value, using default")
		return fallback
	}
	return v
}
