// Package expense records an owner's running costs, booked under named groups.
package expense

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyGroupName     = errors.New("expense group name cannot be empty")
	ErrDuplicateGroupName = errors.New("an expense group with this name already exists")
	ErrMissingGroup       = errors.New("expense must belong to a group")
	ErrNonPositiveAmount  = errors.New("expense amount must be positive")
)

// Group is an owner-defined expense category such as fuel or wages
type Group struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewGroup(ownerID int64, name string) (*Group, error) {
	g := &Group{OwnerID: ownerID}
	if err := g.Rename(name); err != nil {
		return nil, err
	}
	g.CreatedAt = g.UpdatedAt
	return g, nil
}

func (g *Group) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyGroupName
	}
	g.Name = name
	g.UpdatedAt = time.Now()
	return nil
}

type Expense struct {
	ID          int64           `json:"id"`
	OwnerID     int64           `json:"owner_id"`
	GroupID     int64           `json:"group_id"`
	GroupName   string          `json:"group_name,omitempty"`
	LocationID  *int64          `json:"location_id,omitempty"`
	ExpenseDate time.Time       `json:"expense_date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	AddedBy     *int64          `json:"added_by,omitempty"`
	IsDeleted   bool            `json:"is_deleted"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewExpense(ownerID, groupID int64, locationID *int64, expenseDate time.Time, amount decimal.Decimal, description string, addedBy *int64) (*Expense, error) {
	if groupID <= 0 {
		return nil, ErrMissingGroup
	}
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	now := time.Now()
	return &Expense{
		OwnerID:     ownerID,
		GroupID:     groupID,
		LocationID:  locationID,
		ExpenseDate: expenseDate,
		Amount:      amount,
		Description: strings.TrimSpace(description),
		AddedBy:     addedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ListFilter narrows expense listings. Nil ids mean no filtering.
type ListFilter struct {
	Range      shared.DateRange
	GroupID    *int64
	LocationID *int64
}

type GroupRepository interface {
	Create(ctx context.Context, g *Group) error
	GetByID(ctx context.Context, ownerID, id int64) (*Group, error)
	ListAll(ctx context.Context, ownerID int64) ([]*Group, error)
	Update(ctx context.Context, g *Group) error
	SoftDelete(ctx context.Context, ownerID, id int64) error
	WithTx(tx pgx.Tx) GroupRepository
}

type Repository interface {
	Create(ctx context.Context, e *Expense) error
	GetByID(ctx context.Context, ownerID, id int64) (*Expense, error)
	List(ctx context.Context, ownerID int64, filter ListFilter, limit, offset int) ([]*Expense, error)
	Count(ctx context.Context, ownerID int64, filter ListFilter) (int64, error)
	Update(ctx context.Context, e *Expense) error
	SoftDelete(ctx context.Context, ownerID, id int64) error
	WithTx(tx pgx.Tx) Repository
}

type ErrGroupNotFound struct {
	GroupID int64
}

func (e ErrGroupNotFound) Error() string {
	return "expense group not found: " + strconv.FormatInt(e.GroupID, 10)
}

func (e ErrGroupNotFound) Is(target error) bool {
	t, ok := target.(ErrGroupNotFound)
	if !ok {
		return false
	}
	return t.GroupID == 0 || t.GroupID == e.GroupID
}

type ErrExpenseNotFound struct {
	ExpenseID int64
}

func (e ErrExpenseNotFound) Error() string {
	return "expense not found: " + strconv.FormatInt(e.ExpenseID, 10)
}

func (e ErrExpenseNotFound) Is(target error) bool {
	t, ok := target.(ErrExpenseNotFound)
	if !ok {
		return false
	}
	return t.ExpenseID == 0 || t.ExpenseID == e.ExpenseID
}
