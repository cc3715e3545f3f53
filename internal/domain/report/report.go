// Package report defines the date-ranged aggregates shown on the back-office reports.
package report

import (
	"context"

	"github.com/jar-backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Filter scopes a report. A nil LocationID means all locations.
type Filter struct {
	Range      shared.DateRange
	LocationID *int64
}

type SalesSummary struct {
	Count         int64           `json:"count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalAfterTax decimal.Decimal `json:"total_after_tax"`
}

type CollectionSummary struct {
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// ExpenseSummary totals expenses. With a location filter only expenses booked to it count.
type ExpenseSummary struct {
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type JarSummary struct {
	In  int64 `json:"in"`
	Out int64 `json:"out"`
}

// Net is the change in jars held by customers over the period
func (s JarSummary) Net() int64 {
	return s.Out - s.In
}

// CustomerBalance is a customer's latest running balance
type CustomerBalance struct {
	CustomerID int64           `json:"customer_id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Balance    decimal.Decimal `json:"balance"`
}

type Repository interface {
	Sales(ctx context.Context, ownerID int64, filter Filter) (*SalesSummary, error)
	Collections(ctx context.Context, ownerID int64, filter Filter) (*CollectionSummary, error)
	Jars(ctx context.Context, ownerID int64, filter Filter) (*JarSummary, error)
	Expenses(ctx context.Context, ownerID int64, filter Filter) (*ExpenseSummary, error)
	// OutstandingBalances lists customers with a non-zero latest balance, largest first
	OutstandingBalances(ctx context.Context, ownerID int64, locationID *int64, limit, offset int) ([]*CustomerBalance, error)
}
