package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/payment"
	"github.com/jar-backoffice/internal/platform/persistence"
)

const paymentColumns = `id, owner_id, customer_id, sale_id, payment_date, amount, remark, added_by,
		is_approved, is_deleted, created_at`

type PaymentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewPaymentRepository(logger *slog.Logger, db *persistence.PostgresDB) payment.Repository {
	return &PaymentRepository{querier: db.Pool(), logger: logger}
}

func (r *PaymentRepository) WithTx(tx pgx.Tx) payment.Repository {
	return &PaymentRepository{querier: tx, logger: r.logger}
}

func scanPayment(row rowScanner) (*payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.CustomerID,
		&p.SaleID,
		&p.PaymentDate,
		&p.Amount,
		&p.Remark,
		&p.AddedBy,
		&p.IsApproved,
		&p.IsDeleted,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (owner_id, customer_id, sale_id, payment_date, amount, remark, added_by,
			is_approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		p.OwnerID,
		p.CustomerID,
		p.SaleID,
		dateOnly(p.PaymentDate),
		p.Amount,
		p.Remark,
		p.AddedBy,
		p.IsApproved,
		p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		r.logger.Error("Failed to create payment", "owner_id", p.OwnerID, "customer_id", p.CustomerID, "error", err)
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func paymentWhere(ownerID int64, filter payment.ListFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("owner_id = $%d", ownerID)
	w.addRaw("is_deleted = FALSE")
	w.addDateRange("payment_date", filter.Range)
	if filter.CustomerID != nil {
		w.add("customer_id = $%d", *filter.CustomerID)
	}
	return w
}

func (r *PaymentRepository) List(ctx context.Context, ownerID int64, filter payment.ListFilter, limit, offset int) ([]*payment.Payment, error) {
	w := paymentWhere(ownerID, filter)
	pageSQL, args := w.page(limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM payments %s ORDER BY payment_date DESC, id DESC %s`, paymentColumns, w.sql(), pageSQL)

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list payments", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]*payment.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over payments: %w", err)
	}
	return payments, nil
}

func (r *PaymentRepository) Count(ctx context.Context, ownerID int64, filter payment.ListFilter) (int64, error) {
	w := paymentWhere(ownerID, filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM payments %s`, w.sql())

	var count int64
	if err := r.querier.QueryRow(ctx, query, w.args...).Scan(&count); err != nil {
		r.logger.Error("Failed to count payments", "owner_id", ownerID, "error", err)
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}
