package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/location"
	"github.com/jar-backoffice/internal/platform/persistence"
)

const locationColumns = `id, owner_id, name, is_deleted, created_at, updated_at`

type LocationRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewLocationRepository(logger *slog.Logger, db *persistence.PostgresDB) location.Repository {
	return &LocationRepository{querier: db.Pool(), logger: logger}
}

func (r *LocationRepository) WithTx(tx pgx.Tx) location.Repository {
	return &LocationRepository{querier: tx, logger: r.logger}
}

func scanLocation(row rowScanner) (*location.Location, error) {
	var l location.Location
	if err := row.Scan(&l.ID, &l.OwnerID, &l.Name, &l.IsDeleted, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func locationWhere(ownerID int64, search string) *whereBuilder {
	w := &whereBuilder{}
	w.add("owner_id = $%d", ownerID)
	w.addRaw("is_deleted = FALSE")
	if search != "" {
		w.add("name ILIKE $%d", likePattern(search))
	}
	return w
}

func (r *LocationRepository) Create(ctx context.Context, l *location.Location) error {
	query := `
		INSERT INTO locations (owner_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query, l.OwnerID, l.Name, l.CreatedAt, l.UpdatedAt).Scan(&l.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return location.ErrDuplicateName
		}
		r.logger.Error("Failed to create location", "owner_id", l.OwnerID, "name", l.Name, "error", err)
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}

func (r *LocationRepository) GetByID(ctx context.Context, ownerID, id int64) (*location.Location, error) {
	query := `SELECT ` + locationColumns + `
		FROM locations
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE`

	l, err := scanLocation(r.querier.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, location.ErrLocationNotFound{LocationID: id}
		}
		r.logger.Error("Failed to get location", "owner_id", ownerID, "id", id, "error", err)
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return l, nil
}

func (r *LocationRepository) List(ctx context.Context, ownerID int64, search string, limit, offset int) ([]*location.Location, error) {
	w := locationWhere(ownerID, search)
	pageSQL, args := w.page(limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM locations %s ORDER BY name ASC, id ASC %s`, locationColumns, w.sql(), pageSQL)

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list locations", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	locations := make([]*location.Location, 0)
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over locations: %w", err)
	}
	return locations, nil
}

func (r *LocationRepository) Count(ctx context.Context, ownerID int64, search string) (int64, error) {
	w := locationWhere(ownerID, search)
	query := `SELECT COUNT(*) FROM locations ` + w.sql()

	var total int64
	if err := r.querier.QueryRow(ctx, query, w.args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count locations", "owner_id", ownerID, "error", err)
		return 0, fmt.Errorf("failed to count locations: %w", err)
	}
	return total, nil
}

func (r *LocationRepository) Update(ctx context.Context, l *location.Location) error {
	query := `
		UPDATE locations SET name = $3, updated_at = $4
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE
	`

	result, err := r.querier.Exec(ctx, query, l.OwnerID, l.ID, l.Name, l.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return location.ErrDuplicateName
		}
		r.logger.Error("Failed to update location", "owner_id", l.OwnerID, "id", l.ID, "error", err)
		return fmt.Errorf("failed to update location: %w", err)
	}
	if result.RowsAffected() == 0 {
		return location.ErrLocationNotFound{LocationID: l.ID}
	}
	return nil
}

func (r *LocationRepository) SoftDelete(ctx context.Context, ownerID, id int64) error {
	query := `
		UPDATE locations SET is_deleted = TRUE, updated_at = NOW()
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE
	`

	result, err := r.querier.Exec(ctx, query, ownerID, id)
	if err != nil {
		r.logger.Error("Failed to delete location", "owner_id", ownerID, "id", id, "error", err)
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if result.RowsAffected() == 0 {
		return location.ErrLocationNotFound{LocationID: id}
	}
	return nil
}
