package customer

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
)

// ListFilter narrows customer listings. Zero values mean no filtering.
type ListFilter struct {
	Search     string
	LocationID *int64
	ActiveOnly bool
}

// Repository defines customer persistence operations. Every lookup is owner scoped
// and ignores soft-deleted rows.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, ownerID, id int64) (*Customer, error)
	List(ctx context.Context, ownerID int64, filter ListFilter, limit, offset int) ([]*Customer, error)
	Count(ctx context.Context, ownerID int64, filter ListFilter) (int64, error)
	Update(ctx context.Context, c *Customer) error
	SoftDelete(ctx context.Context, ownerID, id int64) error

	// LockForUpdate takes a row lock on the customer for the rest of the transaction.
	// All balance-changing writes for a customer serialize on this lock.
	LockForUpdate(ctx context.Context, ownerID, id int64) (*Customer, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrCustomerNotFound covers missing, soft-deleted and foreign-owner customers alike
type ErrCustomerNotFound struct {
	OwnerID    int64
	CustomerID int64
}

func (e ErrCustomerNotFound) Error() string {
	return "customer not found: " + strconv.FormatInt(e.CustomerID, 10)
}

// Is matches any ErrCustomerNotFound when the target carries no customer id
func (e ErrCustomerNotFound) Is(target error) bool {
	t, ok := target.(ErrCustomerNotFound)
	if !ok {
		return false
	}
	if t.CustomerID == 0 {
		return true
	}
	return e.CustomerID == t.CustomerID && (t.OwnerID == 0 || e.OwnerID == t.OwnerID)
}
