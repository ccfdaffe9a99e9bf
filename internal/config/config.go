package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"bank/internal/infrastructure/database"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

const defaultClientURL = "http://localhost:5173,http://localhost:5175"

type Config struct {
	HTTPPort  int    `env:"HTTP_PORT" validate:"min=1,max=65535"`
	ClientURL string `env:"CLIENT_URL"`
	LogLevel  string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	StoreDriver string `env:"STORE_DRIVER" validate:"oneof=postgres memory"`

	DB struct {
		Host     string `env:"BANK_DB_HOST" validate:"required"`
		Port     int    `env:"BANK_DB_PORT" validate:"min=1,max=65535"`
		User     string `env:"BANK_DB_USER"`
		Password string `env:"BANK_DB_PASSWORD"`
		Name     string `env:"BANK_DB_NAME" validate:"required"`
		SSLMode  string `env:"BANK_DB_SSLMODE" validate:"oneof=disable require verify-ca verify-full"`

		ConnectRetries    int           `env:"DB_CONNECT_RETRIES" validate:"min=1"`
		ConnectRetryDelay time.Duration `env:"DB_CONNECT_RETRY_DELAY"`
	}

	KafkaBrokerURL          string `env:"KAFKA_BROKER_URL"`
	KafkaAccountEventsTopic string `env:"KAFKA_ACCOUNT_EVENTS_TOPIC" validate:"required"`

	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" validate:"gt=0"`
	OutboxPollTimeout  time.Duration `env:"OUTBOX_POLL_TIMEOUT" validate:"gt=0"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" validate:"min=1,max=1000"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	cfg.HTTPPort = getEnvAsInt("HTTP_PORT", getEnvAsInt("PORT", 5000))
	cfg.ClientURL = getEnvOrDefault("CLIENT_URL", defaultClientURL)
	cfg.LogLevel = strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info"))

	cfg.StoreDriver = strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreDriverPostgres))

	cfg.DB.Host = getEnvOrDefault("BANK_DB_HOST", "localhost")
	cfg.DB.Port = getEnvAsInt("BANK_DB_PORT", 5432)
	cfg.DB.User = getEnvOrDefault("BANK_DB_USER", "user")
	cfg.DB.Password = getEnvOrDefault("BANK_DB_PASSWORD", "password")
	cfg.DB.Name = getEnvOrDefault("BANK_DB_NAME", "bank_db")
	cfg.DB.SSLMode = getEnvOrDefault("BANK_DB_SSLMODE", "disable")
	cfg.DB.ConnectRetries = getEnvAsInt("DB_CONNECT_RETRIES", 10)
	cfg.DB.ConnectRetryDelay = getEnvAsDuration("DB_CONNECT_RETRY_DELAY", 5*time.Second)

	cfg.KafkaBrokerURL = getEnvOrDefault("KAFKA_BROKER_URL", "")
	cfg.KafkaAccountEventsTopic = getEnvOrDefault("KAFKA_ACCOUNT_EVENTS_TOPIC", "account_events")

	cfg.OutboxPollInterval = getEnvAsDuration("OUTBOX_POLL_INTERVAL", 1*time.Second)
	cfg.OutboxPollTimeout = getEnvAsDuration("OUTBOX_POLL_TIMEOUT", 500*time.Millisecond)
	cfg.OutboxBatchSize = getEnvAsInt("OUTBOX_BATCH_SIZE", 10)

	cfg.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	// The memory store serializes everything behind one lock, and the outbox
	// processor would hold it while waiting on the broker.
	if c.StoreDriver == StoreDriverMemory && c.KafkaEnabled() {
		return fmt.Errorf("invalid configuration: STORE_DRIVER=%s cannot publish to Kafka, unset KAFKA_BROKER_URL", StoreDriverMemory)
	}
	return nil
}

func (c *Config) DBConfig() database.DBConfig {
	return database.DBConfig{
		Host:     c.DB.Host,
		Port:     c.DB.Port,
		User:     c.DB.User,
		Password: c.DB.Password,
		DBName:   c.DB.Name,
		SSLMode:  c.DB.SSLMode,
	}
}

// AllowedOrigins splits CLIENT_URL into CORS origins, dropping surrounding
// quotes. An empty list falls back to the local dev origins; the CORS
// middleware would otherwise allow every origin.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range splitList(c.ClientURL) {
		if origin = strings.Trim(origin, `"`); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return splitList(defaultClientURL)
	}
	return origins
}

func (c *Config) KafkaEnabled() bool {
	return len(c.GetKafkaBrokers()) > 0
}

func (c *Config) GetKafkaBrokers() []string {
	return splitList(c.KafkaBrokerURL)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnvOrDefault(key, strconv.Itoa(defaultValue))
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnvOrDefault(key, defaultValue.String())
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
