package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/outbox"
	"github.com/jar-backoffice/internal/domain/shared"
	"github.com/jar-backoffice/internal/platform/metrics"
)

// ErrUnknownEventType marks events this projection cannot apply. They are never retried.
var ErrUnknownEventType = errors.New("unknown ledger event type")

// StatementProjector keeps the customer statement collection in step with the ledger.
// Every write is keyed by entry id, so redelivered events are harmless.
type StatementProjector struct {
	statements ledger.StatementRepository
	metrics    *metrics.Registry
	now        func() time.Time
	logger     *slog.Logger
}

func NewStatementProjector(statements ledger.StatementRepository, m *metrics.Registry, logger *slog.Logger) *StatementProjector {
	return &StatementProjector{
		statements: statements,
		metrics:    m,
		now:        time.Now,
		logger:     logger,
	}
}

func (p *StatementProjector) Project(ctx context.Context, event *outbox.LedgerEvent) error {
	logger := p.logger.With(
		"event_id", event.EventID.String(),
		"event_type", event.Type,
		"owner_id", event.Entry.OwnerID,
		"entry_id", event.Entry.ID,
	)
	if event.CorrelationID != "" {
		logger = logger.With("correlation_id", event.CorrelationID)
	}

	var err error
	switch event.Type {
	case shared.EventLedgerEntryRecorded:
		err = p.upsert(ctx, &event.Entry)
	case shared.EventLedgerEntryDeleted:
		err = p.markDeleted(ctx, &event.Entry, event.OccurredAt)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownEventType, event.Type)
	}

	if err != nil {
		p.metrics.ProjectionResult("error")
		logger.Error("Failed to project ledger event", "error", err)
		return err
	}

	p.metrics.ProjectionResult("ok")
	logger.Debug("Projected ledger event")
	return nil
}

func (p *StatementProjector) upsert(ctx context.Context, entry *ledger.Entry) error {
	line, err := ledger.NewStatementLine(entry, p.now())
	if err != nil {
		return fmt.Errorf("build statement line: %w", err)
	}
	return p.statements.Upsert(ctx, line)
}

// markDeleted flags the line. A delete that overtook its recorded event still
// leaves a complete line because the event carries the whole entry.
func (p *StatementProjector) markDeleted(ctx context.Context, entry *ledger.Entry, deletedAt time.Time) error {
	if deletedAt.IsZero() {
		deletedAt = p.now()
	}

	err := p.statements.MarkDeleted(ctx, entry.OwnerID, entry.ID, deletedAt)
	if !errors.Is(err, ledger.ErrEntryNotFound{}) {
		return err
	}

	line, err := ledger.NewStatementLine(entry, p.now())
	if err != nil {
		return fmt.Errorf("build statement line: %w", err)
	}
	line.IsDeleted = true
	line.DeletedAt = &deletedAt
	return p.statements.Upsert(ctx, line)
}
