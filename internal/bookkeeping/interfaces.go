// Package bookkeeping appends entries to customers' running ledgers.
//
// Every write locks the customer row first, so concurrent writers for one
// customer build a strictly sequential balance chain while different
// customers proceed independently.
package bookkeeping

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/shared"
)

// EntryRequest asks for one credit or debit on a customer's ledger.
// Amount is the raw client value and is parsed by the chainer.
type EntryRequest struct {
	OwnerID       int64
	CustomerID    int64
	Kind          ledger.Kind
	Amount        string
	Remark        string
	ActorID       *int64
	CorrelationID string
}

// Chainer records and removes ledger entries
type Chainer interface {
	// Record runs RecordTx in its own transaction
	Record(ctx context.Context, req *EntryRequest) (*ledger.Entry, error)
	// RecordTx appends an entry inside the caller's transaction
	RecordTx(ctx context.Context, tx pgx.Tx, req *EntryRequest) (*ledger.Entry, error)
	// DeleteEntry soft deletes an entry without touching any other balance
	DeleteEntry(ctx context.Context, ownerID, entryID int64, correlationID string) error
	// Committed reports entries whose transaction committed
	Committed(entries ...*ledger.Entry)
}

// OutboxManager queues ledger events next to the ledger write
type OutboxManager interface {
	CreateOutboxEntry(ctx context.Context, tx pgx.Tx, eventType shared.EventType, entry *ledger.Entry, correlationID string) error
}
