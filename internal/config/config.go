// Package config загружает конфигурацию srota из окружения.
//
// Порядок: значения по умолчанию, затем .env файл (SROTA_ENV_FILE,
// по умолчанию ".env"), затем переменные окружения процесса.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"

	"github.com/shaiso/Srota/internal/scheduler"
)

// EnvFileVar — переменная с путём к .env файлу.
const EnvFileVar = "SROTA_ENV_FILE"

const defaultEnvFile = ".env"

// ErrInvalidConfig — конфигурация не прошла валидацию.
var ErrInvalidConfig = errors.New("invalid config")

// Config — конфигурация воркера и CLI.
type Config struct {
	// Logging
	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`

	// HTTP (/healthz, /metrics)
	Port            int           `env:"WORKER_PORT"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`

	// Heartbeat — polling задача
	HeartbeatInterval   time.Duration `env:"HEARTBEAT_INTERVAL"`
	HeartbeatRetries    int           `env:"HEARTBEAT_RETRIES"`
	HeartbeatRetryDelay time.Duration `env:"HEARTBEAT_RETRY_DELAY"`

	// Housekeeping — pipeline задача
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL"`

	// ReportCron — cron задача отчёта (пусто — выключена)
	ReportCron string `env:"REPORT_CRON"`

	// RabbitMQ
	RabbitMQURL   string `env:"RABBITMQ_URL"`
	RabbitMQQueue string `env:"RABBITMQ_QUEUE"`

	// Redis
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`
	RedisKey      string `env:"REDIS_KEY"`

	// PostgreSQL outbox
	DBURL              string        `env:"DB_URL"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC"`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID"`

	// SSE (пусто — выключено)
	SSEURL string `env:"SSE_URL"`
}

// Default возвращает конфигурацию по умолчанию.
// Внешние backend'ы по умолчанию выключены.
func Default() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Port:                 8083,
		ShutdownTimeout:      30 * time.Second,
		HeartbeatInterval:    30 * time.Second,
		HeartbeatRetries:     3,
		HeartbeatRetryDelay:  5 * time.Second,
		HousekeepingInterval: time.Minute,
		RabbitMQQueue:        "srota.events",
		RedisKey:             "srota:events",
		OutboxPollInterval:   time.Second,
		KafkaTopic:           "srota.events",
		KafkaGroupID:         "srota",
	}
}

// Load читает конфигурацию.
//
// Отсутствующий .env файл по умолчанию игнорируется; если путь задан
// явно через SROTA_ENV_FILE, файл обязан существовать.
func Load() (*Config, error) {
	path, explicit := os.LookupEnv(EnvFileVar)
	if !explicit || path == "" {
		path = defaultEnvFile
		explicit = false
	}
	return load(path, explicit)
}

func load(envFile string, required bool) (*Config, error) {
	cfg := Default()

	if err := cfg.parseEnvFile(envFile, required); err != nil {
		return nil, err
	}

	// Переменные окружения (наивысший приоритет)
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseEnvFile применяет значения из .env файла.
func (c *Config) parseEnvFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("stat env file %s: %w", path, err)
	}

	envMap, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	if err := env.ParseWithOptions(c, env.Options{Environment: envMap}); err != nil {
		return fmt.Errorf("parse env file %s: %w", path, err)
	}
	return nil
}

// Validate проверяет значения.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		invalid("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.Port <= 0 || c.Port > 65535 {
		invalid("WORKER_PORT out of range: %d", c.Port)
	}
	if c.ShutdownTimeout <= 0 {
		invalid("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.HeartbeatInterval <= 0 {
		invalid("HEARTBEAT_INTERVAL must be positive")
	}
	if c.HeartbeatRetries < 0 {
		invalid("HEARTBEAT_RETRIES must be non-negative")
	}
	if c.HeartbeatRetryDelay < 0 {
		invalid("HEARTBEAT_RETRY_DELAY must be non-negative")
	}
	if c.HousekeepingInterval <= 0 {
		invalid("HOUSEKEEPING_INTERVAL must be positive")
	}
	if c.ReportCron != "" {
		if err := scheduler.Validate(c.ReportCron); err != nil {
			invalid("REPORT_CRON: %v", err)
		}
	}
	if c.OutboxPollInterval <= 0 {
		invalid("OUTBOX_POLL_INTERVAL must be positive")
	}

	return errors.Join(errs...)
}

// Backend — источник событий, включённый конфигурацией.
type Backend string

// Поддерживаемые backend'ы.
const (
	BackendRedis    Backend = "redis"
	BackendRabbitMQ Backend = "rabbitmq"
	BackendKafka    Backend = "kafka"
	BackendOutbox   Backend = "outbox"
)

// Backends возвращает включённые источники событий.
func (c *Config) Backends() []Backend {
	var out []Backend
	if c.RedisAddr != "" {
		out = append(out, BackendRedis)
	}
	if c.RabbitMQURL != "" {
		out = append(out, BackendRabbitMQ)
	}
	if len(c.KafkaBrokers) > 0 {
		out = append(out, BackendKafka)
	}
	if c.DBURL != "" {
		out = append(out, BackendOutbox)
	}
	return out
}
