package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/sequence"
	"github.com/jar-backoffice/internal/platform/persistence"
)

type SequenceRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewSequenceRepository(logger *slog.Logger, db *persistence.PostgresDB) sequence.Repository {
	return &SequenceRepository{querier: db.Pool(), logger: logger}
}

func (r *SequenceRepository) WithTx(tx pgx.Tx) sequence.Repository {
	return &SequenceRepository{querier: tx, logger: r.logger}
}

// Next bumps the counter with an upsert. The row lock taken by the update
// serializes concurrent callers until their transaction ends.
func (r *SequenceRepository) Next(ctx context.Context, ownerID int64, name sequence.Name) (int64, error) {
	query := `
		INSERT INTO owner_sequences (owner_id, name, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (owner_id, name) DO UPDATE SET value = owner_sequences.value + 1
		RETURNING value
	`

	var value int64
	if err := r.querier.QueryRow(ctx, query, ownerID, string(name)).Scan(&value); err != nil {
		r.logger.Error("Failed to advance sequence", "owner_id", ownerID, "sequence", name, "error", err)
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return value, nil
}
