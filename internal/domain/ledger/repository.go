package ledger

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository persists ledger entries. All reads skip soft-deleted rows.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	// GetLatestActive returns the most recent non-deleted entry in insertion order,
	// or (nil, nil) when the customer has no entries.
	GetLatestActive(ctx context.Context, ownerID, customerID int64) (*Entry, error)
	GetByID(ctx context.Context, ownerID, id int64) (*Entry, error)
	ListByCustomer(ctx context.Context, ownerID, customerID int64, limit, offset int) ([]*Entry, error)
	CountByCustomer(ctx context.Context, ownerID, customerID int64) (int64, error)
	SoftDelete(ctx context.Context, ownerID, id int64) error
	WithTx(tx pgx.Tx) Repository
}
