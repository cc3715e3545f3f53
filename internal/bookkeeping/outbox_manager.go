package bookkeeping

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/outbox"
	"github.com/jar-backoffice/internal/domain/shared"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// CreateOutboxEntry stores the event in the same transaction as the entry it describes
func (m *OutboxManagerImpl) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, eventType shared.EventType, entry *ledger.Entry, correlationID string) error {
	logger := m.logger
	if correlationID != "" {
		logger = m.logger.With("correlation_id", correlationID)
	}

	message, err := outbox.NewLedgerMessage(eventType, entry, correlationID)
	if err != nil {
		logger.Error("Failed to build outbox message", "entry_id", entry.ID, "error", err)
		return fmt.Errorf("failed to build outbox message for entry %d: %w", entry.ID, err)
	}

	if err := m.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
		logger.Error("Failed to create outbox message",
			"entry_id", entry.ID,
			"event_type", eventType,
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message for entry %d: %w", entry.ID, err)
	}
	logger.Debug("Outbox message created", "entry_id", entry.ID, "outbox_id", message.ID, "event_type", eventType)

	return nil
}
