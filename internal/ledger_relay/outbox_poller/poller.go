package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jar-backoffice/internal/config"
	"github.com/jar-backoffice/internal/domain/outbox"
	"github.com/jar-backoffice/internal/domain/shared"
	"github.com/jar-backoffice/internal/platform/messaging/producers"
	"github.com/jar-backoffice/internal/platform/metrics"
)

// Poller relays pending outbox messages to the broker
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        EventPublisher
	deadLetters      producers.DeadLetterPublisher
	metrics          *metrics.Registry
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

// NewPoller builds a poller. deadLetters may be nil, in which case exhausted
// messages are only marked FAILED_TO_PUBLISH.
func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	publisher EventPublisher,
	deadLetters producers.DeadLetterPublisher,
	m *metrics.Registry,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		deadLetters:      deadLetters,
		metrics:          m,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start begins polling until context is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopping")
			return
		case <-ticker.C:
			if err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Outbox batch failed", "error", err)
			}
		}
	}
}

func (p *Poller) processPendingMessages(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}
	p.logger.Debug("Fetched pending outbox messages", "count", len(messages))

	for _, msg := range messages {
		err := p.publisher.Publish(ctx, msg)
		if err == nil {
			p.metrics.OutboxPublishedEvent(string(msg.EventType))
			continue
		}

		if errors.Is(err, ErrBrokerUnavailable) {
			// Messages stay in id order; the rest of the batch waits for the next tick
			p.metrics.OutboxFailure("breaker_open")
			p.logger.Warn("Broker unavailable, postponing outbox batch", "remaining", len(messages))
			return nil
		}

		p.handleFailure(ctx, msg, err)
	}

	return nil
}

func (p *Poller) handleFailure(ctx context.Context, msg *outbox.Message, publishErr error) {
	logger := p.logger.With("outbox_id", msg.ID, "entry_id", msg.EntryID, "attempts", msg.Attempts)
	logger.Error("Failed to publish outbox message", "error", publishErr)
	p.metrics.OutboxFailure("publish")

	if err := p.outboxRepo.IncrementAttempts(ctx, msg.ID); err != nil {
		logger.Error("Failed to increment outbox attempts", "error", err)
		return
	}
	if msg.Attempts+1 < p.maxRetryAttempts {
		return
	}

	logger.Warn("Outbox message exhausted its retries")
	if p.deadLetters != nil {
		reason := fmt.Sprintf("outbox publish failed after %d attempts: %v", msg.Attempts+1, publishErr)
		if err := p.deadLetters.PublishToDLQ(ctx, fmt.Sprintf("outbox:%d", msg.ID), msg.Payload, reason); err != nil {
			// Stay pending so the next tick tries the DLQ again
			logger.Error("Failed to move outbox message to DLQ", "error", err)
			return
		}
		p.metrics.OutboxFailure("dead_lettered")
	}

	if err := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); err != nil {
		logger.Error("Failed to mark outbox message FAILED_TO_PUBLISH", "error", err)
	}
}
