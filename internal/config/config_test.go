package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKER_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.HTTPPort)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:5175"}, cfg.AllowedOrigins())
	assert.Equal(t, 10, cfg.DB.ConnectRetries)
	assert.Equal(t, 5*time.Second, cfg.DB.ConnectRetryDelay)
	assert.Equal(t, "account_events", cfg.KafkaAccountEventsTopic)
	assert.Equal(t, 10, cfg.OutboxBatchSize)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("CLIENT_URL", " https://bank.example.com , ")
	t.Setenv("BANK_DB_HOST", "db")
	t.Setenv("BANK_DB_PORT", "6543")
	t.Setenv("BANK_DB_NAME", "ledger")
	t.Setenv("KAFKA_BROKER_URL", "kafka-1:9092,kafka-2:9092")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, []string{"https://bank.example.com"}, cfg.AllowedOrigins())
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.GetKafkaBrokers())
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxPollInterval)

	db := cfg.DBConfig()
	assert.Equal(t, "db", db.Host)
	assert.Equal(t, 6543, db.Port)
	assert.Equal(t, "ledger", db.DBName)
	assert.Equal(t, "host=db port=6543 user=user password=password dbname=ledger sslmode=disable", db.DSN())
}

func TestLoadConfigMalformedValuesFallBack(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-port")
	t.Setenv("OUTBOX_POLL_TIMEOUT", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.HTTPPort)
	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollTimeout)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"STORE_DRIVER", "mysql"},
		{"LOG_LEVEL", "verbose"},
		{"HTTP_PORT", "70000"},
		{"OUTBOX_BATCH_SIZE", "0"},
		{"BANK_DB_SSLMODE", "sometimes"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestLoadConfigStoreDriverIsCaseInsensitive(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("KAFKA_BROKER_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
}

func TestLoadConfigRejectsMemoryStoreWithKafka(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("KAFKA_BROKER_URL", "kafka:9092")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKER_URL")
}

func TestAllowedOrigins(t *testing.T) {
	defaults := []string{"http://localhost:5173", "http://localhost:5175"}
	cases := []struct {
		name      string
		clientURL string
		want      []string
	}{
		{"empty", "", defaults},
		{"only separators", " , ,", defaults},
		{"only quotes", `""`, defaults},
		{"quoted", `"http://a"`, []string{"http://a"}},
		{"quoted list", `"http://a", "http://b"`, []string{"http://a", "http://b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("CLIENT_URL", tc.clientURL)
			cfg, err := LoadConfig()
			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg.AllowedOrigins())
		})
	}
}

func TestLoadConfigPortFallback(t *testing.T) {
	t.Setenv("PORT", "7000")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.HTTPPort)

	t.Setenv("HTTP_PORT", "8000")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.HTTPPort)
}
