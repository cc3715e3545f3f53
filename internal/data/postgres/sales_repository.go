package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/sales"
	"github.com/jar-backoffice/internal/platform/persistence"
)

const saleColumns = `id, owner_id, customer_id, invoice_number, sale_date, total_amount, total_tax,
		additional_charge, total_after_tax, remark, added_by, is_deleted, created_at, updated_at`

const saleItemColumns = `id, sale_id, owner_id, product_id, product_name, unit, remark, quantity, unit_price,
		total_price, tax_rate, tax_amount, total_after_tax, is_deleted, created_at`

type SalesRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewSalesRepository(logger *slog.Logger, db *persistence.PostgresDB) sales.Repository {
	return &SalesRepository{querier: db.Pool(), logger: logger}
}

func (r *SalesRepository) WithTx(tx pgx.Tx) sales.Repository {
	return &SalesRepository{querier: tx, logger: r.logger}
}

func scanSale(row rowScanner) (*sales.Sale, error) {
	var s sales.Sale
	err := row.Scan(
		&s.ID,
		&s.OwnerID,
		&s.CustomerID,
		&s.InvoiceNumber,
		&s.SaleDate,
		&s.TotalAmount,
		&s.TotalTax,
		&s.AdditionalCharge,
		&s.TotalAfterTax,
		&s.Remark,
		&s.AddedBy,
		&s.IsDeleted,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSaleItem(row rowScanner) (*sales.Item, error) {
	var i sales.Item
	err := row.Scan(
		&i.ID,
		&i.SaleID,
		&i.OwnerID,
		&i.ProductID,
		&i.ProductName,
		&i.Unit,
		&i.Remark,
		&i.Quantity,
		&i.UnitPrice,
		&i.TotalPrice,
		&i.TaxRate,
		&i.TaxAmount,
		&i.TotalAfterTax,
		&i.IsDeleted,
		&i.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Create inserts the sale header only; items go through CreateItem
func (r *SalesRepository) Create(ctx context.Context, s *sales.Sale) error {
	query := `
		INSERT INTO sales (owner_id, customer_id, invoice_number, sale_date, total_amount, total_tax,
			additional_charge, total_after_tax, remark, added_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		s.OwnerID,
		s.CustomerID,
		s.InvoiceNumber,
		dateOnly(s.SaleDate),
		s.TotalAmount,
		s.TotalTax,
		s.AdditionalCharge,
		s.TotalAfterTax,
		s.Remark,
		s.AddedBy,
		s.CreatedAt,
		s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		r.logger.Error("Failed to create sale",
			"owner_id", s.OwnerID,
			"customer_id", s.CustomerID,
			"invoice_number", s.InvoiceNumber,
			"error", err,
		)
		return fmt.Errorf("failed to create sale: %w", err)
	}
	return nil
}

func (r *SalesRepository) CreateItem(ctx context.Context, item *sales.Item) error {
	query := `
		INSERT INTO sale_items (sale_id, owner_id, product_id, product_name, unit, remark, quantity,
			unit_price, total_price, tax_rate, tax_amount, total_after_tax, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		item.SaleID,
		item.OwnerID,
		item.ProductID,
		item.ProductName,
		item.Unit,
		item.Remark,
		item.Quantity,
		item.UnitPrice,
		item.TotalPrice,
		item.TaxRate,
		item.TaxAmount,
		item.TotalAfterTax,
		item.CreatedAt,
	).Scan(&item.ID)
	if err != nil {
		r.logger.Error("Failed to create sale item", "sale_id", item.SaleID, "product_id", item.ProductID, "error", err)
		return fmt.Errorf("failed to create sale item: %w", err)
	}
	return nil
}

func (r *SalesRepository) GetByID(ctx context.Context, ownerID, id int64) (*sales.Sale, error) {
	query := `SELECT ` + saleColumns + `
		FROM sales
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE`

	s, err := scanSale(r.querier.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sales.ErrSaleNotFound{SaleID: id}
		}
		r.logger.Error("Failed to get sale", "owner_id", ownerID, "id", id, "error", err)
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	items, err := r.listItems(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return s, nil
}

func (r *SalesRepository) listItems(ctx context.Context, ownerID, saleID int64) ([]*sales.Item, error) {
	query := `SELECT ` + saleItemColumns + `
		FROM sale_items
		WHERE owner_id = $1 AND sale_id = $2 AND is_deleted = FALSE
		ORDER BY id ASC`

	rows, err := r.querier.Query(ctx, query, ownerID, saleID)
	if err != nil {
		r.logger.Error("Failed to list sale items", "sale_id", saleID, "error", err)
		return nil, fmt.Errorf("failed to list sale items: %w", err)
	}
	defer rows.Close()

	items := make([]*sales.Item, 0)
	for rows.Next() {
		item, err := scanSaleItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over sale items: %w", err)
	}
	return items, nil
}

func saleWhere(ownerID int64, filter sales.ListFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("owner_id = $%d", ownerID)
	w.addRaw("is_deleted = FALSE")
	w.addDateRange("sale_date", filter.Range)
	if filter.CustomerID != nil {
		w.add("customer_id = $%d", *filter.CustomerID)
	}
	return w
}

// List returns sale headers in the range, latest sale date first. Items are not loaded.
func (r *SalesRepository) List(ctx context.Context, ownerID int64, filter sales.ListFilter, limit, offset int) ([]*sales.Sale, error) {
	w := saleWhere(ownerID, filter)
	pageSQL, args := w.page(limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM sales %s ORDER BY sale_date DESC, id DESC %s`, saleColumns, w.sql(), pageSQL)

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list sales", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	result := make([]*sales.Sale, 0)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over sales: %w", err)
	}
	return result, nil
}

func (r *SalesRepository) Count(ctx context.Context, ownerID int64, filter sales.ListFilter) (int64, error) {
	w := saleWhere(ownerID, filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM sales %s`, w.sql())

	var count int64
	if err := r.querier.QueryRow(ctx, query, w.args...).Scan(&count); err != nil {
		r.logger.Error("Failed to count sales", "owner_id", ownerID, "error", err)
		return 0, fmt.Errorf("failed to count sales: %w", err)
	}
	return count, nil
}

// SoftDelete flags the sale and its items. Run it on a WithTx repository so both updates commit together.
func (r *SalesRepository) SoftDelete(ctx context.Context, ownerID, id int64) error {
	result, err := r.querier.Exec(ctx, `
		UPDATE sales SET is_deleted = TRUE, updated_at = NOW()
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE
	`, ownerID, id)
	if err != nil {
		r.logger.Error("Failed to delete sale", "owner_id", ownerID, "id", id, "error", err)
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	if result.RowsAffected() == 0 {
		return sales.ErrSaleNotFound{SaleID: id}
	}

	if _, err := r.querier.Exec(ctx, `
		UPDATE sale_items SET is_deleted = TRUE
		WHERE owner_id = $1 AND sale_id = $2
	`, ownerID, id); err != nil {
		r.logger.Error("Failed to delete sale items", "owner_id", ownerID, "sale_id", id, "error", err)
		return fmt.Errorf("failed to delete sale items: %w", err)
	}
	return nil
}
