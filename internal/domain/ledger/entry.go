package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the direction of a ledger entry
type Kind string

const (
	KindCredit Kind = "credit"
	KindDebit  Kind = "debit"
)

// ParseKind accepts "credit" or "debit" in any case
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindCredit:
		return KindCredit, nil
	case KindDebit:
		return KindDebit, nil
	}
	return "", ErrInvalidKind{Kind: s}
}

// Entry is one row of a customer's running ledger. Only IsDeleted ever changes after insert.
type Entry struct {
	ID            int64           `json:"id"`
	OwnerID       int64           `json:"owner_id"`
	CustomerID    int64           `json:"customer_id"`
	Direction     Kind            `json:"kind"`
	Credit        decimal.Decimal `json:"credit"`
	Debit         decimal.Decimal `json:"debit"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Remark        string          `json:"remark"`
	AddedBy       *int64          `json:"added_by,omitempty"`
	AddedDate     time.Time       `json:"added_date"`
	CreatedAt     time.Time       `json:"created_at"`
	IsDeleted     bool            `json:"is_deleted"`
}

// Kind is the stored direction. Entries without one fall back to the side that is set.
func (e *Entry) Kind() Kind {
	if e.Direction != "" {
		return e.Direction
	}
	if e.Debit.IsZero() && !e.Credit.IsZero() {
		return KindCredit
	}
	if !e.Debit.IsZero() {
		return KindDebit
	}
	return KindCredit
}

// Amount is the non-zero side of the entry
func (e *Entry) Amount() decimal.Decimal {
	if e.Kind() == KindDebit {
		return e.Debit
	}
	return e.Credit
}

// Draft is a validated request to append to a customer's ledger
type Draft struct {
	OwnerID    int64
	CustomerID int64
	Kind       Kind
	Amount     decimal.Decimal
	Remark     string
	AddedBy    *int64
}

// Chain builds the entry that follows previous. A nil previous means an empty
// ledger with a zero opening balance. Overdraft is allowed.
func (d Draft) Chain(previous *Entry, addedDate, createdAt time.Time) (*Entry, error) {
	before := decimal.Zero
	if previous != nil {
		before = previous.BalanceAfter
	}

	entry := &Entry{
		OwnerID:       d.OwnerID,
		CustomerID:    d.CustomerID,
		Direction:     d.Kind,
		Credit:        decimal.Zero,
		Debit:         decimal.Zero,
		BalanceBefore: before,
		Remark:        d.Remark,
		AddedBy:       d.AddedBy,
		AddedDate:     addedDate,
		CreatedAt:     createdAt,
	}

	switch d.Kind {
	case KindCredit:
		entry.Credit = d.Amount
		entry.BalanceAfter = before.Add(d.Amount)
	case KindDebit:
		entry.Debit = d.Amount
		entry.BalanceAfter = before.Sub(d.Amount)
	default:
		return nil, ErrInvalidKind{Kind: string(d.Kind)}
	}

	return entry, nil
}
