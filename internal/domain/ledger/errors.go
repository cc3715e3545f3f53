package ledger

import "strconv"

// ErrInvalidAmount is returned when an amount is missing or not numeric
type ErrInvalidAmount struct {
	Raw    string
	Reason string
}

func (e ErrInvalidAmount) Error() string {
	if e.Raw == "" {
		return "invalid amount: amount is required"
	}
	if e.Reason != "" {
		return "invalid amount: " + strconv.Quote(e.Raw) + ": " + e.Reason
	}
	return "invalid amount: " + strconv.Quote(e.Raw)
}

// Is matches any ErrInvalidAmount
func (e ErrInvalidAmount) Is(target error) bool {
	_, ok := target.(ErrInvalidAmount)
	return ok
}

// ErrInvalidKind is returned for a direction other than credit or debit
type ErrInvalidKind struct {
	Kind string
}

func (e ErrInvalidKind) Error() string {
	return "invalid ledger entry kind: " + strconv.Quote(e.Kind)
}

func (e ErrInvalidKind) Is(target error) bool {
	_, ok := target.(ErrInvalidKind)
	return ok
}

// ErrStorageFailure wraps a failed read or write of the ledger store.
// It is never used for "no entries yet", which is a zero opening balance.
type ErrStorageFailure struct {
	Op  string
	Err error
}

func (e ErrStorageFailure) Error() string {
	if e.Err == nil {
		return "ledger storage failure during " + e.Op
	}
	return "ledger storage failure during " + e.Op + ": " + e.Err.Error()
}

func (e ErrStorageFailure) Unwrap() error {
	return e.Err
}

// Is matches any ErrStorageFailure when the target has no Op, otherwise the same Op
func (e ErrStorageFailure) Is(target error) bool {
	t, ok := target.(ErrStorageFailure)
	if !ok {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}

// ErrEntryNotFound indicates a missing or foreign ledger entry
type ErrEntryNotFound struct {
	EntryID int64
}

func (e ErrEntryNotFound) Error() string {
	return "ledger entry not found: " + strconv.FormatInt(e.EntryID, 10)
}

func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	return t.EntryID == 0 || e.EntryID == t.EntryID
}
