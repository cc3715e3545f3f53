package sales

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNoItems           = errors.New("sale must contain at least one item")
	ErrInvalidQuantity   = errors.New("item quantity must be positive")
	ErrNegativePrice     = errors.New("item unit price cannot be negative")
	ErrInvalidTaxRate    = errors.New("item tax rate must be between 0 and 100")
	ErrNegativeCharge    = errors.New("additional charge cannot be negative")
	ErrNegativePaidValue = errors.New("amount paid cannot be negative")
	ErrInvalidSerial     = errors.New("invoice serial must be positive")
)

var hundred = decimal.NewFromInt(100)

// Item is one invoice line. Totals are always derived, never taken from input.
type Item struct {
	ID            int64           `json:"id"`
	SaleID        int64           `json:"sale_id"`
	OwnerID       int64           `json:"owner_id"`
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Unit          string          `json:"unit"`
	Remark        string          `json:"remark"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalAfterTax decimal.Decimal `json:"total_after_tax"`
	IsDeleted     bool            `json:"is_deleted"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewItem prices a line: total = qty * price, tax = total * rate / 100 (2dp).
func NewItem(productID int64, productName, unit, remark string, quantity, unitPrice, taxRate decimal.Decimal) (*Item, error) {
	if !quantity.IsPositive() || !quantity.Equal(quantity.Round(3)) {
		return nil, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return nil, ErrNegativePrice
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		return nil, ErrInvalidTaxRate
	}

	total := quantity.Mul(unitPrice).Round(2)
	tax := total.Mul(taxRate).Div(hundred).Round(2)

	return &Item{
		ProductID:     productID,
		ProductName:   strings.TrimSpace(productName),
		Unit:          unit,
		Remark:        remark,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		TotalPrice:    total,
		TaxRate:       taxRate,
		TaxAmount:     tax,
		TotalAfterTax: total.Add(tax),
	}, nil
}

// Sale is an invoice issued to a customer
type Sale struct {
	ID               int64           `json:"id"`
	OwnerID          int64           `json:"owner_id"`
	CustomerID       int64           `json:"customer_id"`
	InvoiceNumber    string          `json:"invoice_number"`
	SaleDate         time.Time       `json:"sale_date"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TotalTax         decimal.Decimal `json:"total_tax"`
	AdditionalCharge decimal.Decimal `json:"additional_charge"`
	TotalAfterTax    decimal.Decimal `json:"total_after_tax"`
	Remark           string          `json:"remark"`
	AddedBy          *int64          `json:"added_by,omitempty"`
	IsDeleted        bool            `json:"is_deleted"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Items            []*Item         `json:"items"`
}

// NewSale sums the items. The grand total includes the additional charge.
func NewSale(ownerID, customerID int64, saleDate time.Time, additionalCharge decimal.Decimal, remark string, addedBy *int64, items []*Item) (*Sale, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if additionalCharge.IsNegative() {
		return nil, ErrNegativeCharge
	}

	sale := &Sale{
		OwnerID:          ownerID,
		CustomerID:       customerID,
		SaleDate:         saleDate,
		TotalAmount:      decimal.Zero,
		TotalTax:         decimal.Zero,
		AdditionalCharge: additionalCharge,
		Remark:           remark,
		AddedBy:          addedBy,
		Items:            items,
	}
	for _, item := range items {
		item.OwnerID = ownerID
		sale.TotalAmount = sale.TotalAmount.Add(item.TotalPrice)
		sale.TotalTax = sale.TotalTax.Add(item.TaxAmount)
	}
	sale.TotalAfterTax = sale.TotalAmount.Add(sale.TotalTax).Add(additionalCharge)

	now := time.Now()
	sale.CreatedAt = now
	sale.UpdatedAt = now
	return sale, nil
}

// FormatInvoiceNumber renders the owner-local serial as S00000001.
func FormatInvoiceNumber(serial int64) (string, error) {
	if serial <= 0 {
		return "", ErrInvalidSerial
	}
	return fmt.Sprintf("S%08d", serial), nil
}
