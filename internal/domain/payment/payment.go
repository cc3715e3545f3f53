package payment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var ErrNonPositiveAmount = errors.New("payment amount must be positive")

// Payment is money collected from a customer
type Payment struct {
	ID          int64           `json:"id"`
	OwnerID     int64           `json:"owner_id"`
	CustomerID  int64           `json:"customer_id"`
	SaleID      *int64          `json:"sale_id,omitempty"`
	PaymentDate time.Time       `json:"payment_date"`
	Amount      decimal.Decimal `json:"amount"`
	Remark      string          `json:"remark"`
	AddedBy     *int64          `json:"added_by,omitempty"`
	IsApproved  bool            `json:"is_approved"`
	IsDeleted   bool            `json:"is_deleted"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewPayment(ownerID, customerID int64, saleID *int64, paymentDate time.Time, amount decimal.Decimal, remark string, addedBy *int64) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	return &Payment{
		OwnerID:     ownerID,
		CustomerID:  customerID,
		SaleID:      saleID,
		PaymentDate: paymentDate,
		Amount:      amount,
		Remark:      remark,
		AddedBy:     addedBy,
		IsApproved:  true,
		CreatedAt:   time.Now(),
	}, nil
}

// ListFilter narrows payment listings
type ListFilter struct {
	Range      shared.DateRange
	CustomerID *int64
}

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	List(ctx context.Context, ownerID int64, filter ListFilter, limit, offset int) ([]*Payment, error)
	Count(ctx context.Context, ownerID int64, filter ListFilter) (int64, error)
	WithTx(tx pgx.Tx) Repository
}
