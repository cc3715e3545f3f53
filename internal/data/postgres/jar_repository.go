package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/jar"
	"github.com/jar-backoffice/internal/platform/persistence"
)

const jarColumns = `id, owner_id, customer_id, sale_id, in_jar, out_jar, counter_date, remark, added_by,
		is_deleted, created_at`

type JarRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewJarRepository(logger *slog.Logger, db *persistence.PostgresDB) jar.Repository {
	return &JarRepository{querier: db.Pool(), logger: logger}
}

func (r *JarRepository) WithTx(tx pgx.Tx) jar.Repository {
	return &JarRepository{querier: tx, logger: r.logger}
}

func scanJarCounter(row rowScanner) (*jar.Counter, error) {
	var c jar.Counter
	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.CustomerID,
		&c.SaleID,
		&c.InJar,
		&c.OutJar,
		&c.CounterDate,
		&c.Remark,
		&c.AddedBy,
		&c.IsDeleted,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *JarRepository) Create(ctx context.Context, c *jar.Counter) error {
	query := `
		INSERT INTO jar_counters (owner_id, customer_id, sale_id, in_jar, out_jar, counter_date, remark,
			added_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		c.OwnerID,
		c.CustomerID,
		c.SaleID,
		c.InJar,
		c.OutJar,
		dateOnly(c.CounterDate),
		c.Remark,
		c.AddedBy,
		c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		r.logger.Error("Failed to create jar counter", "owner_id", c.OwnerID, "customer_id", c.CustomerID, "error", err)
		return fmt.Errorf("failed to create jar counter: %w", err)
	}
	return nil
}

func jarWhere(ownerID int64, filter jar.ListFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("owner_id = $%d", ownerID)
	w.addRaw("is_deleted = FALSE")
	w.addDateRange("counter_date", filter.Range)
	if filter.CustomerID != nil {
		w.add("customer_id = $%d", *filter.CustomerID)
	}
	return w
}

func (r *JarRepository) List(ctx context.Context, ownerID int64, filter jar.ListFilter, limit, offset int) ([]*jar.Counter, error) {
	w := jarWhere(ownerID, filter)
	pageSQL, args := w.page(limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM jar_counters %s ORDER BY counter_date DESC, id DESC %s`, jarColumns, w.sql(), pageSQL)

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list jar counters", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to list jar counters: %w", err)
	}
	defer rows.Close()

	counters := make([]*jar.Counter, 0)
	for rows.Next() {
		c, err := scanJarCounter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan jar counter: %w", err)
		}
		counters = append(counters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over jar counters: %w", err)
	}
	return counters, nil
}

func (r *JarRepository) Count(ctx context.Context, ownerID int64, filter jar.ListFilter) (int64, error) {
	w := jarWhere(ownerID, filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM jar_counters %s`, w.sql())

	var count int64
	if err := r.querier.QueryRow(ctx, query, w.args...).Scan(&count); err != nil {
		r.logger.Error("Failed to count jar counters", "owner_id", ownerID, "error", err)
		return 0, fmt.Errorf("failed to count jar counters: %w", err)
	}
	return count, nil
}

func (r *JarRepository) JarsHeld(ctx context.Context, ownerID, customerID int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(out_jar - in_jar), 0)
		FROM jar_counters
		WHERE owner_id = $1 AND customer_id = $2 AND is_deleted = FALSE
	`

	var held int64
	if err := r.querier.QueryRow(ctx, query, ownerID, customerID).Scan(&held); err != nil {
		r.logger.Error("Failed to sum jars held", "owner_id", ownerID, "customer_id", customerID, "error", err)
		return 0, fmt.Errorf("failed to sum jars held: %w", err)
	}
	return held, nil
}
