package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/expense"
	"github.com/jar-backoffice/internal/platform/persistence"
)

const expenseGroupColumns = `id, owner_id, name, is_deleted, created_at, updated_at`

// ExpenseGroupRepository stores the owner's expense categories
type ExpenseGroupRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewExpenseGroupRepository(logger *slog.Logger, db *persistence.PostgresDB) expense.GroupRepository {
	return &ExpenseGroupRepository{querier: db.Pool(), logger: logger}
}

func (r *ExpenseGroupRepository) WithTx(tx pgx.Tx) expense.GroupRepository {
	return &ExpenseGroupRepository{querier: tx, logger: r.logger}
}

func scanExpenseGroup(row rowScanner) (*expense.Group, error) {
	var g expense.Group
	if err := row.Scan(&g.ID, &g.OwnerID, &g.Name, &g.IsDeleted, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *ExpenseGroupRepository) Create(ctx context.Context, g *expense.Group) error {
	query := `
		INSERT INTO expense_groups (owner_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query, g.OwnerID, g.Name, g.CreatedAt, g.UpdatedAt).Scan(&g.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return expense.ErrDuplicateGroupName
		}
		r.logger.Error("Failed to create expense group", "owner_id", g.OwnerID, "name", g.Name, "error", err)
		return fmt.Errorf("failed to create expense group: %w", err)
	}
	return nil
}

func (r *ExpenseGroupRepository) GetByID(ctx context.Context, ownerID, id int64) (*expense.Group, error) {
	query := `SELECT ` + expenseGroupColumns + `
		FROM expense_groups
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE`

	g, err := scanExpenseGroup(r.querier.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, expense.ErrGroupNotFound{GroupID: id}
		}
		r.logger.Error("Failed to get expense group", "owner_id", ownerID, "id", id, "error", err)
		return nil, fmt.Errorf("failed to get expense group: %w", err)
	}
	return g, nil
}

// ListAll returns every live group by name. Owners keep a handful of them.
func (r *ExpenseGroupRepository) ListAll(ctx context.Context, ownerID int64) ([]*expense.Group, error) {
	query := `SELECT ` + expenseGroupColumns + `
		FROM expense_groups
		WHERE owner_id = $1 AND is_deleted = FALSE
		ORDER BY name ASC, id ASC`

	rows, err := r.querier.Query(ctx, query, ownerID)
	if err != nil {
		r.logger.Error("Failed to list expense groups", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to list expense groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*expense.Group, 0)
	for rows.Next() {
		g, err := scanExpenseGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over expense groups: %w", err)
	}
	return groups, nil
}

func (r *ExpenseGroupRepository) Update(ctx context.Context, g *expense.Group) error {
	query := `
		UPDATE expense_groups SET name = $3, updated_at = $4
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE
	`

	result, err := r.querier.Exec(ctx, query, g.OwnerID, g.ID, g.Name, g.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return expense.ErrDuplicateGroupName
		}
		r.logger.Error("Failed to update expense group", "owner_id", g.OwnerID, "id", g.ID, "error", err)
		return fmt.Errorf("failed to update expense group: %w", err)
	}
	if result.RowsAffected() == 0 {
		return expense.ErrGroupNotFound{GroupID: g.ID}
	}
	return nil
}

func (r *ExpenseGroupRepository) SoftDelete(ctx context.Context, ownerID, id int64) error {
	query := `
		UPDATE expense_groups SET is_deleted = TRUE, updated_at = NOW()
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE
	`

	result, err := r.querier.Exec(ctx, query, ownerID, id)
	if err != nil {
		r.logger.Error("Failed to delete expense group", "owner_id", ownerID, "id", id, "error", err)
		return fmt.Errorf("failed to delete expense group: %w", err)
	}
	if result.RowsAffected() == 0 {
		return expense.ErrGroupNotFound{GroupID: id}
	}
	return nil
}

const expenseColumns = `e.id, e.owner_id, e.group_id, g.name, e.location_id, e.expense_date, e.amount,
		e.description, e.added_by, e.is_deleted, e.created_at, e.updated_at`

// ExpenseRepository stores individual expenses, listed together with their group name
type ExpenseRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewExpenseRepository(logger *slog.Logger, db *persistence.PostgresDB) expense.Repository {
	return &ExpenseRepository{querier: db.Pool(), logger: logger}
}

func (r *ExpenseRepository) WithTx(tx pgx.Tx) expense.Repository {
	return &ExpenseRepository{querier: tx, logger: r.logger}
}

func scanExpense(row rowScanner) (*expense.Expense, error) {
	var e expense.Expense
	err := row.Scan(
		&e.ID,
		&e.OwnerID,
		&e.GroupID,
		&e.GroupName,
		&e.LocationID,
		&e.ExpenseDate,
		&e.Amount,
		&e.Description,
		&e.AddedBy,
		&e.IsDeleted,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func expenseWhere(ownerID int64, filter expense.ListFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("e.owner_id = $%d", ownerID)
	w.addRaw("e.is_deleted = FALSE")
	w.addDateRange("e.expense_date", filter.Range)
	if filter.GroupID != nil {
		w.add("e.group_id = $%d", *filter.GroupID)
	}
	if filter.LocationID != nil {
		w.add("e.location_id = $%d", *filter.LocationID)
	}
	return w
}

func (r *ExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	query := `
		INSERT INTO expenses (owner_id, group_id, location_id, expense_date, amount, description, added_by,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		e.OwnerID,
		e.GroupID,
		e.LocationID,
		dateOnly(e.ExpenseDate),
		e.Amount,
		e.Description,
		e.AddedBy,
		e.CreatedAt,
		e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		r.logger.Error("Failed to create expense", "owner_id", e.OwnerID, "group_id", e.GroupID, "error", err)
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, ownerID, id int64) (*expense.Expense, error) {
	query := `SELECT ` + expenseColumns + `
		FROM expenses e
		JOIN expense_groups g ON g.id = e.group_id
		WHERE e.owner_id = $1 AND e.id = $2 AND e.is_deleted = FALSE`

	e, err := scanExpense(r.querier.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, expense.ErrExpenseNotFound{ExpenseID: id}
		}
		r.logger.Error("Failed to get expense", "owner_id", ownerID, "id", id, "error", err)
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

// List pages through expenses, newest first
func (r *ExpenseRepository) List(ctx context.Context, ownerID int64, filter expense.ListFilter, limit, offset int) ([]*expense.Expense, error) {
	w := expenseWhere(ownerID, filter)
	pageSQL, args := w.page(limit, offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM expenses e
		JOIN expense_groups g ON g.id = e.group_id
		%s
		ORDER BY e.expense_date DESC, e.id DESC
		%s`, expenseColumns, w.sql(), pageSQL)

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list expenses", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]*expense.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over expenses: %w", err)
	}
	return expenses, nil
}

func (r *ExpenseRepository) Count(ctx context.Context, ownerID int64, filter expense.ListFilter) (int64, error) {
	w := expenseWhere(ownerID, filter)
	query := `SELECT COUNT(*) FROM expenses e ` + w.sql()

	var total int64
	if err := r.querier.QueryRow(ctx, query, w.args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count expenses", "owner_id", ownerID, "error", err)
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return total, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, e *expense.Expense) error {
	query := `
		UPDATE expenses
		SET group_id = $3, location_id = $4, expense_date = $5, amount = $6, description = $7, updated_at = $8
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE
	`

	result, err := r.querier.Exec(ctx, query,
		e.OwnerID,
		e.ID,
		e.GroupID,
		e.LocationID,
		dateOnly(e.ExpenseDate),
		e.Amount,
		e.Description,
		e.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update expense", "owner_id", e.OwnerID, "id", e.ID, "error", err)
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if result.RowsAffected() == 0 {
		return expense.ErrExpenseNotFound{ExpenseID: e.ID}
	}
	return nil
}

func (r *ExpenseRepository) SoftDelete(ctx context.Context, ownerID, id int64) error {
	query := `
		UPDATE expenses SET is_deleted = TRUE, updated_at = NOW()
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE
	`

	result, err := r.querier.Exec(ctx, query, ownerID, id)
	if err != nil {
		r.logger.Error("Failed to delete expense", "owner_id", ownerID, "id", id, "error", err)
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if result.RowsAffected() == 0 {
		return expense.ErrExpenseNotFound{ExpenseID: id}
	}
	return nil
}
