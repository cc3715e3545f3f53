package sales

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/shared"
)

// ListFilter narrows sale listings
type ListFilter struct {
	Range      shared.DateRange
	CustomerID *int64
}

// Repository persists sales and their items
type Repository interface {
	Create(ctx context.Context, sale *Sale) error
	CreateItem(ctx context.Context, item *Item) error
	// GetByID returns the sale with its active items
	GetByID(ctx context.Context, ownerID, id int64) (*Sale, error)
	List(ctx context.Context, ownerID int64, filter ListFilter, limit, offset int) ([]*Sale, error)
	Count(ctx context.Context, ownerID int64, filter ListFilter) (int64, error)
	// SoftDelete flags the sale and all of its items
	SoftDelete(ctx context.Context, ownerID, id int64) error
	WithTx(tx pgx.Tx) Repository
}

type ErrSaleNotFound struct {
	SaleID int64
}

func (e ErrSaleNotFound) Error() string {
	return "sale not found: " + strconv.FormatInt(e.SaleID, 10)
}

func (e ErrSaleNotFound) Is(target error) bool {
	t, ok := target.(ErrSaleNotFound)
	if !ok {
		return false
	}
	return t.SaleID == 0 || t.SaleID == e.SaleID
}
