// Package jar tracks returnable jars handed to and collected from customers.
package jar

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/shared"
)

var (
	ErrNegativeJars = errors.New("jar counts cannot be negative")
	ErrNoMovement   = errors.New("jar movement must move at least one jar")
)

// Counter records jars going out to (OutJar) and coming back from (InJar) a customer
type Counter struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	CustomerID  int64     `json:"customer_id"`
	SaleID      *int64    `json:"sale_id,omitempty"`
	InJar       int       `json:"in_jar"`
	OutJar      int       `json:"out_jar"`
	CounterDate time.Time `json:"counter_date"`
	Remark      string    `json:"remark"`
	AddedBy     *int64    `json:"added_by,omitempty"`
	IsDeleted   bool      `json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewCounter(ownerID, customerID int64, saleID *int64, inJar, outJar int, date time.Time, remark string, addedBy *int64) (*Counter, error) {
	if inJar < 0 || outJar < 0 {
		return nil, ErrNegativeJars
	}
	if inJar == 0 && outJar == 0 {
		return nil, ErrNoMovement
	}
	return &Counter{
		OwnerID:     ownerID,
		CustomerID:  customerID,
		SaleID:      saleID,
		InJar:       inJar,
		OutJar:      outJar,
		CounterDate: date,
		Remark:      remark,
		AddedBy:     addedBy,
		CreatedAt:   time.Now(),
	}, nil
}

type ListFilter struct {
	Range      shared.DateRange
	CustomerID *int64
}

type Repository interface {
	Create(ctx context.Context, c *Counter) error
	List(ctx context.Context, ownerID int64, filter ListFilter, limit, offset int) ([]*Counter, error)
	Count(ctx context.Context, ownerID int64, filter ListFilter) (int64, error)
	// JarsHeld is the number of jars currently with the customer (out minus in)
	JarsHeld(ctx context.Context, ownerID, customerID int64) (int64, error)
	WithTx(tx pgx.Tx) Repository
}
