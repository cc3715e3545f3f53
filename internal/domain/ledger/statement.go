package ledger

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatementLine is the read-model projection of an Entry kept in the document store
type StatementLine struct {
	EntryID       int64                `json:"entry_id" bson:"entry_id"`
	OwnerID       int64                `json:"owner_id" bson:"owner_id"`
	CustomerID    int64                `json:"customer_id" bson:"customer_id"`
	Kind          Kind                 `json:"kind" bson:"kind"`
	Amount        primitive.Decimal128 `json:"amount" bson:"amount"`
	BalanceBefore primitive.Decimal128 `json:"balance_before" bson:"balance_before"`
	BalanceAfter  primitive.Decimal128 `json:"balance_after" bson:"balance_after"`
	Remark        string               `json:"remark" bson:"remark"`
	AddedBy       *int64               `json:"added_by,omitempty" bson:"added_by,omitempty"`
	AddedDate     time.Time            `json:"added_date" bson:"added_date"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
	IsDeleted     bool                 `json:"is_deleted" bson:"is_deleted"`
	DeletedAt     *time.Time           `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
	ProjectedAt   time.Time            `json:"projected_at" bson:"projected_at"`
}

// NewStatementLine converts an entry into its projected form
func NewStatementLine(e *Entry, projectedAt time.Time) (*StatementLine, error) {
	amount, err := primitive.ParseDecimal128(e.Amount().String())
	if err != nil {
		return nil, err
	}
	before, err := primitive.ParseDecimal128(e.BalanceBefore.String())
	if err != nil {
		return nil, err
	}
	after, err := primitive.ParseDecimal128(e.BalanceAfter.String())
	if err != nil {
		return nil, err
	}

	return &StatementLine{
		EntryID:       e.ID,
		OwnerID:       e.OwnerID,
		CustomerID:    e.CustomerID,
		Kind:          e.Kind(),
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Remark:        e.Remark,
		AddedBy:       e.AddedBy,
		AddedDate:     e.AddedDate,
		CreatedAt:     e.CreatedAt,
		IsDeleted:     e.IsDeleted,
		ProjectedAt:   projectedAt,
	}, nil
}

// StatementRepository stores the projected customer statement
type StatementRepository interface {
	Upsert(ctx context.Context, line *StatementLine) error
	MarkDeleted(ctx context.Context, ownerID, entryID int64, deletedAt time.Time) error
	ListByCustomer(ctx context.Context, ownerID, customerID int64, limit, offset int) ([]*StatementLine, error)
	CountByCustomer(ctx context.Context, ownerID, customerID int64) (int64, error)
}
