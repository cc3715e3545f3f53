// Package sequence issues per-owner gapless serial numbers for human-facing codes.
package sequence

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Name identifies one per-owner counter
type Name string

const (
	Customers Name = "customers"
	Sales     Name = "sales"
)

// Repository hands out the next value of a counter. Callers use it inside
// the transaction that consumes the value so rolled-back work releases it.
type Repository interface {
	Next(ctx context.Context, ownerID int64, name Name) (int64, error)
	WithTx(tx pgx.Tx) Repository
}
