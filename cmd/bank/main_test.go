package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bank/internal/config"
)

func TestRunReturnsStartupErrors(t *testing.T) {
	cfg := &config.Config{
		HTTPPort:                0,
		StoreDriver:             config.StoreDriverMemory,
		KafkaBrokerURL:          "127.0.0.1:1",
		KafkaAccountEventsTopic: "account_events",
		OutboxPollInterval:      time.Second,
		OutboxPollTimeout:       time.Second,
		OutboxBatchSize:         10,
		ShutdownTimeout:         time.Second,
	}

	err := run(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ensure Kafka topics")
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	_, err := openStore(ctx, &config.Config{StoreDriver: "mysql"}, zap.NewNop())
	assert.EqualError(t, err, `unknown store driver "mysql"`)
}
