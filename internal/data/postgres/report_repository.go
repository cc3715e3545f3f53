package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jar-backoffice/internal/domain/report"
	"github.com/jar-backoffice/internal/platform/persistence"
)

// ReportRepository computes aggregates directly in SQL. Location filters join through customers.
type ReportRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewReportRepository(logger *slog.Logger, db *persistence.PostgresDB) report.Repository {
	return &ReportRepository{querier: db.Pool(), logger: logger}
}

func reportWhere(alias, dateColumn string, ownerID int64, filter report.Filter) *whereBuilder {
	w := &whereBuilder{}
	w.add(alias+".owner_id = $%d", ownerID)
	w.addRaw(alias + ".is_deleted = FALSE")
	w.addDateRange(alias+"."+dateColumn, filter.Range)
	if filter.LocationID != nil {
		w.add("c.location_id = $%d", *filter.LocationID)
	}
	return w
}

func (r *ReportRepository) Sales(ctx context.Context, ownerID int64, filter report.Filter) (*report.SalesSummary, error) {
	w := reportWhere("s", "sale_date", ownerID, filter)
	query := fmt.Sprintf(`
		SELECT COUNT(*), COALESCE(SUM(s.total_amount), 0), COALESCE(SUM(s.total_tax), 0),
			COALESCE(SUM(s.total_after_tax), 0)
		FROM sales s
		JOIN customers c ON c.id = s.customer_id
		%s`, w.sql())

	var summary report.SalesSummary
	err := r.querier.QueryRow(ctx, query, w.args...).Scan(
		&summary.Count,
		&summary.TotalAmount,
		&summary.TotalTax,
		&summary.TotalAfterTax,
	)
	if err != nil {
		r.logger.Error("Failed to build sales report", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to build sales report: %w", err)
	}
	return &summary, nil
}

func (r *ReportRepository) Collections(ctx context.Context, ownerID int64, filter report.Filter) (*report.CollectionSummary, error) {
	w := reportWhere("p", "payment_date", ownerID, filter)
	w.addRaw("p.is_approved = TRUE")
	query := fmt.Sprintf(`
		SELECT COUNT(*), COALESCE(SUM(p.amount), 0)
		FROM payments p
		JOIN customers c ON c.id = p.customer_id
		%s`, w.sql())

	var summary report.CollectionSummary
	if err := r.querier.QueryRow(ctx, query, w.args...).Scan(&summary.Count, &summary.Total); err != nil {
		r.logger.Error("Failed to build collection report", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to build collection report: %w", err)
	}
	return &summary, nil
}

func (r *ReportRepository) Jars(ctx context.Context, ownerID int64, filter report.Filter) (*report.JarSummary, error) {
	w := reportWhere("j", "counter_date", ownerID, filter)
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(j.in_jar), 0), COALESCE(SUM(j.out_jar), 0)
		FROM jar_counters j
		JOIN customers c ON c.id = j.customer_id
		%s`, w.sql())

	var summary report.JarSummary
	if err := r.querier.QueryRow(ctx, query, w.args...).Scan(&summary.In, &summary.Out); err != nil {
		r.logger.Error("Failed to build jar report", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to build jar report: %w", err)
	}
	return &summary, nil
}

// Expenses has no customer join; the location filter applies to the expense itself
func (r *ReportRepository) Expenses(ctx context.Context, ownerID int64, filter report.Filter) (*report.ExpenseSummary, error) {
	w := &whereBuilder{}
	w.add("e.owner_id = $%d", ownerID)
	w.addRaw("e.is_deleted = FALSE")
	w.addDateRange("e.expense_date", filter.Range)
	if filter.LocationID != nil {
		w.add("e.location_id = $%d", *filter.LocationID)
	}
	query := fmt.Sprintf(`
		SELECT COUNT(*), COALESCE(SUM(e.amount), 0)
		FROM expenses e
		%s`, w.sql())

	var summary report.ExpenseSummary
	if err := r.querier.QueryRow(ctx, query, w.args...).Scan(&summary.Count, &summary.Total); err != nil {
		r.logger.Error("Failed to build expense report", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to build expense report: %w", err)
	}
	return &summary, nil
}

// OutstandingBalances reads each customer's latest live ledger entry
func (r *ReportRepository) OutstandingBalances(ctx context.Context, ownerID int64, locationID *int64, limit, offset int) ([]*report.CustomerBalance, error) {
	w := &whereBuilder{}
	w.add("c.owner_id = $%d", ownerID)
	w.addRaw("c.is_deleted = FALSE")
	w.addRaw("le.balance_after <> 0")
	if locationID != nil {
		w.add("c.location_id = $%d", *locationID)
	}
	pageSQL, args := w.page(limit, offset)
	query := fmt.Sprintf(`
		SELECT c.id, c.code, c.name, le.balance_after
		FROM customers c
		JOIN LATERAL (
			SELECT balance_after FROM ledger_entries
			WHERE owner_id = c.owner_id AND customer_id = c.id AND is_deleted = FALSE
			ORDER BY id DESC
			LIMIT 1
		) le ON TRUE
		%s
		ORDER BY le.balance_after DESC, c.id ASC
		%s`, w.sql(), pageSQL)

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list outstanding balances", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to list outstanding balances: %w", err)
	}
	defer rows.Close()

	balances := make([]*report.CustomerBalance, 0)
	for rows.Next() {
		var b report.CustomerBalance
		if err := rows.Scan(&b.CustomerID, &b.Code, &b.Name, &b.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan outstanding balance: %w", err)
		}
		balances = append(balances, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over outstanding balances: %w", err)
	}
	return balances, nil
}
