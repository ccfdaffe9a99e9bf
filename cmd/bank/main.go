package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bank/internal/app/accounts"
	"bank/internal/config"
	accounts_http "bank/internal/handler/http/accounts"
	kafka_infra "bank/internal/infrastructure/kafka"
	"bank/internal/outbox"
)

func newLogger(level string) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)
	return zapConfig.Build()
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	appLogger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Bank Service stopped with error", zap.Error(err))
		appLogger.Sync() //nolint:errcheck
		os.Exit(1)
	}
	appLogger.Sync() //nolint:errcheck
}

// run owns every resource it opens, so its deferred cleanups always execute
// before main decides on the exit code.
func run(cfg *config.Config, appLogger *zap.Logger) error {
	appLogger.Info("Bank Service starting...", zap.String("store_driver", cfg.StoreDriver))

	ctxMain, cancelMain := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancelMain()

	st, err := openStore(ctxMain, cfg, appLogger.With(zap.String("component", "Store")))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := st.close(); err != nil {
			appLogger.Error("Error closing store", zap.Error(err))
		} else {
			appLogger.Info("Store closed.")
		}
	}()

	accountService := accounts.NewAccountService(
		st.tx,
		st.accounts,
		st.outbox,
		appLogger.With(zap.String("component", "AccountService")),
	)
	appLogger.Info("Account Service initialized.")

	router := accounts_http.NewRouter(
		accounts_http.RouterConfig{AllowedOrigins: cfg.AllowedOrigins(), RequestTimeout: 30 * time.Second},
		accountService,
		st.pinger,
		appLogger,
	)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	processorDone := make(chan struct{})
	if cfg.KafkaEnabled() {
		brokers := cfg.GetKafkaBrokers()
		topicCtx, cancel := context.WithTimeout(ctxMain, 10*time.Second)
		err := kafka_infra.EnsureTopics(topicCtx, brokers, []string{cfg.KafkaAccountEventsTopic},
			appLogger.With(zap.String("component", "KafkaAdmin")))
		cancel()
		if err != nil {
			return fmt.Errorf("failed to ensure Kafka topics: %w", err)
		}

		kafkaProducer := kafka_infra.NewProducer(brokers, cfg.KafkaAccountEventsTopic,
			appLogger.With(zap.String("component", "KafkaProducer")))
		defer func() {
			if err := kafkaProducer.Close(); err != nil {
				appLogger.Error("Error closing Kafka producer", zap.Error(err))
			}
		}()

		outboxProcessor := outbox.NewProcessor(
			st.tx,
			st.outbox,
			kafkaProducer,
			cfg.OutboxPollInterval,
			cfg.OutboxPollTimeout,
			cfg.OutboxBatchSize,
			appLogger.With(zap.String("component", "OutboxProcessor")),
		)
		go func() {
			defer close(processorDone)
			outboxProcessor.Start(ctxMain)
		}()
	} else {
		appLogger.Info("KAFKA_BROKER_URL is empty, account events stay in the outbox.")
		close(processorDone)
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctxMain.Done():
		appLogger.Info("Shutting down application...")
	case runErr = <-serverErr:
		appLogger.Error("HTTP server failed", zap.Error(runErr))
		cancelMain()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		appLogger.Info("HTTP server gracefully shut down.")
	}

	select {
	case <-processorDone:
	case <-shutdownCtx.Done():
		appLogger.Warn("Outbox processor did not stop before the shutdown timeout.")
	}

	appLogger.Info("Application gracefully shut down.")
	return runErr
}
