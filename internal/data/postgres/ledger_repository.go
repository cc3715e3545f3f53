package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/platform/persistence"
)

const ledgerColumns = `id, owner_id, customer_id, kind, credit, debit, balance_before, balance_after,
		remark, added_by, added_date, created_at, is_deleted`

// LedgerRepository implements ledger.Repository for PostgreSQL.
// Insertion order is the BIGSERIAL id, which is monotonic per customer while writers hold the customer lock.
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &LedgerRepository{querier: db.Pool(), logger: logger}
}

func (r *LedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &LedgerRepository{querier: tx, logger: r.logger}
}

func scanLedgerEntry(row rowScanner) (*ledger.Entry, error) {
	var e ledger.Entry
	var kind string
	err := row.Scan(
		&e.ID,
		&e.OwnerID,
		&e.CustomerID,
		&kind,
		&e.Credit,
		&e.Debit,
		&e.BalanceBefore,
		&e.BalanceAfter,
		&e.Remark,
		&e.AddedBy,
		&e.AddedDate,
		&e.CreatedAt,
		&e.IsDeleted,
	)
	if err != nil {
		return nil, err
	}
	e.Direction = ledger.Kind(kind)
	return &e, nil
}

func (r *LedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	query := `
		INSERT INTO ledger_entries (owner_id, customer_id, kind, credit, debit, balance_before, balance_after,
			remark, added_by, added_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		entry.OwnerID,
		entry.CustomerID,
		string(entry.Kind()),
		entry.Credit,
		entry.Debit,
		entry.BalanceBefore,
		entry.BalanceAfter,
		entry.Remark,
		entry.AddedBy,
		dateOnly(entry.AddedDate),
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		r.logger.Error("Failed to create ledger entry",
			"owner_id", entry.OwnerID,
			"customer_id", entry.CustomerID,
			"error", err,
		)
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return nil
}

// GetLatestActive returns (nil, nil) when the customer has no live entries
func (r *LedgerRepository) GetLatestActive(ctx context.Context, ownerID, customerID int64) (*ledger.Entry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE owner_id = $1 AND customer_id = $2 AND is_deleted = FALSE
		ORDER BY id DESC
		LIMIT 1`

	entry, err := scanLedgerEntry(r.querier.QueryRow(ctx, query, ownerID, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get latest ledger entry",
			"owner_id", ownerID,
			"customer_id", customerID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to get latest ledger entry: %w", err)
	}
	return entry, nil
}

func (r *LedgerRepository) GetByID(ctx context.Context, ownerID, id int64) (*ledger.Entry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE`

	entry, err := scanLedgerEntry(r.querier.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrEntryNotFound{EntryID: id}
		}
		r.logger.Error("Failed to get ledger entry", "owner_id", ownerID, "id", id, "error", err)
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return entry, nil
}

// ListByCustomer pages through live entries oldest first
func (r *LedgerRepository) ListByCustomer(ctx context.Context, ownerID, customerID int64, limit, offset int) ([]*ledger.Entry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE owner_id = $1 AND customer_id = $2 AND is_deleted = FALSE
		ORDER BY id ASC
		LIMIT $3 OFFSET $4`

	rows, err := r.querier.Query(ctx, query, ownerID, customerID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list ledger entries", "owner_id", ownerID, "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*ledger.Entry, 0)
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			r.logger.Error("Failed to scan ledger entry", "error", err)
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over ledger entries", "error", err)
		return nil, fmt.Errorf("error iterating over ledger entries: %w", err)
	}

	return entries, nil
}

func (r *LedgerRepository) CountByCustomer(ctx context.Context, ownerID, customerID int64) (int64, error) {
	query := `
		SELECT COUNT(*) FROM ledger_entries
		WHERE owner_id = $1 AND customer_id = $2 AND is_deleted = FALSE
	`

	var count int64
	if err := r.querier.QueryRow(ctx, query, ownerID, customerID).Scan(&count); err != nil {
		r.logger.Error("Failed to count ledger entries", "owner_id", ownerID, "customer_id", customerID, "error", err)
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	return count, nil
}

// SoftDelete hides an entry. Balances stored on other entries are left as they are.
func (r *LedgerRepository) SoftDelete(ctx context.Context, ownerID, id int64) error {
	query := `
		UPDATE ledger_entries
		SET is_deleted = TRUE
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE
	`

	result, err := r.querier.Exec(ctx, query, ownerID, id)
	if err != nil {
		r.logger.Error("Failed to delete ledger entry", "owner_id", ownerID, "id", id, "error", err)
		return fmt.Errorf("failed to delete ledger entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ledger.ErrEntryNotFound{EntryID: id}
	}
	return nil
}
