package product

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName      = errors.New("product name cannot be empty")
	ErrNegativePrice  = errors.New("product prices cannot be negative")
	ErrInvalidTaxRate = errors.New("tax rate must be between 0 and 100")
)

// Product is a catalog item sold by an owner
type Product struct {
	ID           int64           `json:"id"`
	OwnerID      int64           `json:"owner_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Rate         decimal.Decimal `json:"rate"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Quantity     int64           `json:"quantity"`
	Unit         string          `json:"unit"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	IsDeleted    bool            `json:"is_deleted"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Validate checks the fields a product write must satisfy
func (p *Product) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.Rate.IsNegative() || p.SellingPrice.IsNegative() {
		return ErrNegativePrice
	}
	if p.TaxRate.IsNegative() || p.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidTaxRate
	}
	return nil
}

// Repository defines product persistence operations, all owner scoped
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, ownerID, id int64) (*Product, error)
	ListAll(ctx context.Context, ownerID int64) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	SoftDelete(ctx context.Context, ownerID, id int64) error
	WithTx(tx pgx.Tx) Repository
}

// ErrProductNotFound indicates a missing, deleted or foreign product
type ErrProductNotFound struct {
	ProductID int64
}

func (e ErrProductNotFound) Error() string {
	return "product not found: " + strconv.FormatInt(e.ProductID, 10)
}

func (e ErrProductNotFound) Is(target error) bool {
	t, ok := target.(ErrProductNotFound)
	if !ok {
		return false
	}
	return t.ProductID == 0 || t.ProductID == e.ProductID
}
