package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/customer"
	"github.com/jar-backoffice/internal/platform/persistence"
)

const customerColumns = `id, owner_id, code, name, phone, email, address, location_id, added_by,
		is_active, is_deleted, added_date, created_at, updated_at`

// CustomerRepository implements customer.Repository for PostgreSQL
type CustomerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewCustomerRepository(logger *slog.Logger, db *persistence.PostgresDB) customer.Repository {
	return &CustomerRepository{querier: db.Pool(), logger: logger}
}

func (r *CustomerRepository) WithTx(tx pgx.Tx) customer.Repository {
	return &CustomerRepository{querier: tx, logger: r.logger}
}

func scanCustomer(row rowScanner) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Code,
		&c.Name,
		&c.Phone,
		&c.Email,
		&c.Address,
		&c.LocationID,
		&c.AddedBy,
		&c.IsActive,
		&c.IsDeleted,
		&c.AddedDate,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts the customer and sets its generated id
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (owner_id, code, name, phone, email, address, location_id, added_by,
			is_active, added_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		c.OwnerID,
		c.Code,
		c.Name,
		c.Phone,
		c.Email,
		c.Address,
		c.LocationID,
		c.AddedBy,
		c.IsActive,
		dateOnly(c.AddedDate),
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		r.logger.Error("Failed to create customer", "owner_id", c.OwnerID, "code", c.Code, "error", err)
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, ownerID, id int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + `
		FROM customers
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE`

	c, err := scanCustomer(r.querier.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrCustomerNotFound{OwnerID: ownerID, CustomerID: id}
		}
		r.logger.Error("Failed to get customer", "owner_id", ownerID, "id", id, "error", err)
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

// LockForUpdate row-locks the customer until the surrounding transaction ends.
// Must be called on a repository bound to a transaction.
func (r *CustomerRepository) LockForUpdate(ctx context.Context, ownerID, id int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + `
		FROM customers
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE
		FOR UPDATE`

	c, err := scanCustomer(r.querier.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrCustomerNotFound{OwnerID: ownerID, CustomerID: id}
		}
		r.logger.Error("Failed to lock customer for update", "owner_id", ownerID, "id", id, "error", err)
		return nil, fmt.Errorf("failed to lock customer for update: %w", err)
	}
	return c, nil
}

func customerWhere(ownerID int64, filter customer.ListFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("owner_id = $%d", ownerID)
	w.addRaw("is_deleted = FALSE")
	if filter.Search != "" {
		w.add("(name ILIKE $%[1]d OR code ILIKE $%[1]d OR phone ILIKE $%[1]d)", likePattern(filter.Search))
	}
	if filter.LocationID != nil {
		w.add("location_id = $%d", *filter.LocationID)
	}
	if filter.ActiveOnly {
		w.addRaw("is_active = TRUE")
	}
	return w
}

// List returns customers newest first
func (r *CustomerRepository) List(ctx context.Context, ownerID int64, filter customer.ListFilter, limit, offset int) ([]*customer.Customer, error) {
	w := customerWhere(ownerID, filter)
	pageSQL, args := w.page(limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM customers %s ORDER BY id DESC %s`, customerColumns, w.sql(), pageSQL)

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list customers", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			r.logger.Error("Failed to scan customer", "error", err)
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over customers", "error", err)
		return nil, fmt.Errorf("error iterating over customers: %w", err)
	}

	return customers, nil
}

func (r *CustomerRepository) Count(ctx context.Context, ownerID int64, filter customer.ListFilter) (int64, error) {
	w := customerWhere(ownerID, filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM customers %s`, w.sql())

	var count int64
	if err := r.querier.QueryRow(ctx, query, w.args...).Scan(&count); err != nil {
		r.logger.Error("Failed to count customers", "owner_id", ownerID, "error", err)
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}

// Update overwrites the editable fields of an active customer
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, phone = $2, email = $3, address = $4, location_id = $5, is_active = $6, updated_at = $7
		WHERE owner_id = $8 AND id = $9 AND is_deleted = FALSE
	`

	result, err := r.querier.Exec(ctx, query,
		c.Name,
		c.Phone,
		c.Email,
		c.Address,
		c.LocationID,
		c.IsActive,
		c.UpdatedAt,
		c.OwnerID,
		c.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update customer", "owner_id", c.OwnerID, "id", c.ID, "error", err)
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return customer.ErrCustomerNotFound{OwnerID: c.OwnerID, CustomerID: c.ID}
	}
	return nil
}

// SoftDelete flags the customer deleted and inactive
func (r *CustomerRepository) SoftDelete(ctx context.Context, ownerID, id int64) error {
	query := `
		UPDATE customers
		SET is_deleted = TRUE, is_active = FALSE, updated_at = NOW()
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE
	`

	result, err := r.querier.Exec(ctx, query, ownerID, id)
	if err != nil {
		r.logger.Error("Failed to delete customer", "owner_id", ownerID, "id", id, "error", err)
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return customer.ErrCustomerNotFound{OwnerID: ownerID, CustomerID: id}
	}
	return nil
}
