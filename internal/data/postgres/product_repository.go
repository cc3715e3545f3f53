package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/product"
	"github.com/jar-backoffice/internal/platform/persistence"
)

const productColumns = `id, owner_id, name, description, rate, selling_price, quantity, unit, tax_rate,
		is_deleted, created_at, updated_at`

type ProductRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewProductRepository(logger *slog.Logger, db *persistence.PostgresDB) product.Repository {
	return &ProductRepository{querier: db.Pool(), logger: logger}
}

func (r *ProductRepository) WithTx(tx pgx.Tx) product.Repository {
	return &ProductRepository{querier: tx, logger: r.logger}
}

func scanProduct(row rowScanner) (*product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Description,
		&p.Rate,
		&p.SellingPrice,
		&p.Quantity,
		&p.Unit,
		&p.TaxRate,
		&p.IsDeleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (owner_id, name, description, rate, selling_price, quantity, unit, tax_rate,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		p.OwnerID,
		p.Name,
		p.Description,
		p.Rate,
		p.SellingPrice,
		p.Quantity,
		p.Unit,
		p.TaxRate,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		r.logger.Error("Failed to create product", "owner_id", p.OwnerID, "name", p.Name, "error", err)
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, ownerID, id int64) (*product.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE`

	p, err := scanProduct(r.querier.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrProductNotFound{ProductID: id}
		}
		r.logger.Error("Failed to get product", "owner_id", ownerID, "id", id, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// ListAll returns the owner's whole catalog by name. Catalogs are small and cached as a unit.
func (r *ProductRepository) ListAll(ctx context.Context, ownerID int64) ([]*product.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE owner_id = $1 AND is_deleted = FALSE
		ORDER BY name ASC, id ASC`

	rows, err := r.querier.Query(ctx, query, ownerID)
	if err != nil {
		r.logger.Error("Failed to list products", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]*product.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	query := `
		UPDATE products
		SET name = $3, description = $4, rate = $5, selling_price = $6, quantity = $7, unit = $8,
			tax_rate = $9, updated_at = $10
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE
	`

	result, err := r.querier.Exec(ctx, query,
		p.OwnerID,
		p.ID,
		p.Name,
		p.Description,
		p.Rate,
		p.SellingPrice,
		p.Quantity,
		p.Unit,
		p.TaxRate,
		p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update product", "owner_id", p.OwnerID, "id", p.ID, "error", err)
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return product.ErrProductNotFound{ProductID: p.ID}
	}
	return nil
}

func (r *ProductRepository) SoftDelete(ctx context.Context, ownerID, id int64) error {
	query := `
		UPDATE products SET is_deleted = TRUE, updated_at = NOW()
		WHERE owner_id = $1 AND id = $2 AND is_deleted = FALSE
	`

	result, err := r.querier.Exec(ctx, query, ownerID, id)
	if err != nil {
		r.logger.Error("Failed to delete product", "owner_id", ownerID, "id", id, "error", err)
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return product.ErrProductNotFound{ProductID: id}
	}
	return nil
}
