// Package outbox publishes account events recorded in the outbox table.
// Rows are claimed inside a transaction, produced to Kafka in creation
// order and marked SENT in the same transaction; rows that fail to publish
// stay PENDING and are retried on the next tick.
package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	kafka_infra "bank/internal/infrastructure/kafka"
	"bank/internal/repository/outbox_repo"
)

type Transactor interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
}

type Processor struct {
	tx           Transactor
	outboxRepo   outbox_repo.OutboxRepository
	producer     kafka_infra.Producer
	pollInterval time.Duration
	pollTimeout  time.Duration
	batchSize    int
	logger       *zap.Logger
}

func NewProcessor(
	tx Transactor,
	outboxRepo outbox_repo.OutboxRepository,
	producer kafka_infra.Producer,
	pollInterval time.Duration,
	pollTimeout time.Duration,
	batchSize int,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		tx:           tx,
		outboxRepo:   outboxRepo,
		producer:     producer,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Start polls until ctx is cancelled.
func (p *Processor) Start(ctx context.Context) {
	p.logger.Info("Starting outbox processor...", zap.Duration("poll_interval", p.pollInterval))
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox processor stopped.")
			return
		case <-ticker.C:
			if _, err := p.ProcessOnce(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("Outbox poll failed", zap.Error(err))
			}
		}
	}
}

// ProcessOnce publishes one batch and returns how many messages were sent.
// Publishing stops at the first failure so per-account ordering holds.
func (p *Processor) ProcessOnce(ctx context.Context) (int, error) {
	sent := 0
	err := p.tx.Transact(ctx, func(ctx context.Context) error {
		queryCtx, cancel := context.WithTimeout(ctx, p.pollTimeout)
		messages, err := p.outboxRepo.GetPendingMessages(queryCtx, p.batchSize)
		cancel()
		if err != nil {
			return err
		}
		if len(messages) == 0 {
			p.logger.Debug("No pending outbox messages found.")
			return nil
		}

		ids := make([]string, 0, len(messages))
		for _, msg := range messages {
			if err := p.producer.Produce(ctx, msg.AggregateID, msg.Payload); err != nil {
				p.logger.Warn("Failed to publish outbox message, will retry",
					zap.String("message_id", msg.ID),
					zap.String("event_type", string(msg.EventType)),
					zap.Error(err))
				break
			}
			ids = append(ids, msg.ID)
		}
		if len(ids) == 0 {
			return nil
		}

		if err := p.outboxRepo.MarkMessagesAsSent(ctx, ids); err != nil {
			return err
		}
		sent = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if sent > 0 {
		p.logger.Info("Outbox messages published", zap.Int("count", sent))
	}
	return sent, nil
}
