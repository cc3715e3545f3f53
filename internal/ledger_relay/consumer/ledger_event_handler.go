package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jar-backoffice/internal/domain/outbox"
	"github.com/jar-backoffice/internal/ledger_relay/service"
	"github.com/jar-backoffice/internal/platform/messaging/producers"
)

// LedgerEventHandler feeds ledger events from Kafka into the statement projection
type LedgerEventHandler struct {
	projection service.ProjectionService
	producer   producers.DeadLetterPublisher
	logger     *slog.Logger
}

// NewLedgerEventHandler builds the handler. producer may be nil when no DLQ is configured.
func NewLedgerEventHandler(
	logger *slog.Logger,
	projection service.ProjectionService,
	producer producers.DeadLetterPublisher,
) *LedgerEventHandler {
	return &LedgerEventHandler{
		projection: projection,
		producer:   producer,
		logger:     logger,
	}
}

// HandleMessage returns nil once the message is projected or parked in the DLQ.
// Any other error leaves the offset uncommitted.
func (h *LedgerEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event outbox.LedgerEvent
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error("Failed to unmarshal ledger event", "error", err, "message_key", string(key))
		return h.deadLetter(ctx, key, value, fmt.Errorf("unmarshal ledger event: %w", err))
	}

	logger := h.logger.With("event_id", event.EventID.String(), "entry_id", event.Entry.ID)
	if event.CorrelationID != "" {
		logger = logger.With("correlation_id", event.CorrelationID)
	}

	if err := h.projection.Project(ctx, &event); err != nil {
		if errors.Is(err, service.ErrUnknownEventType) {
			return h.deadLetter(ctx, key, value, err)
		}
		logger.Error("Failed to project ledger event", "error", err)
		return fmt.Errorf("projecting event %s failed: %w", event.EventID, err)
	}

	logger.Debug("Ledger event projected", "event_type", event.Type)
	return nil
}

// deadLetter parks a message that can never succeed. Without a DLQ the cause is returned.
func (h *LedgerEventHandler) deadLetter(ctx context.Context, key, value []byte, cause error) error {
	if h.producer == nil {
		return cause
	}
	if err := h.producer.PublishToDLQ(ctx, string(key), value, cause.Error()); err != nil {
		h.logger.Error("Failed to publish message to DLQ", "dlq_error", err, "original_error", cause, "message_key", string(key))
		return cause
	}
	return nil
}
