package service

import (
	"context"

	"github.com/jar-backoffice/internal/domain/outbox"
)

// ProjectionService applies one ledger event to the statement read model
type ProjectionService interface {
	Project(ctx context.Context, event *outbox.LedgerEvent) error
}
