package service

import (
	"errors"

	"github.com/jar-backoffice/internal/domain/customer"
	"github.com/jar-backoffice/internal/domain/expense"
	"github.com/jar-backoffice/internal/domain/jar"
	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/location"
	"github.com/jar-backoffice/internal/domain/payment"
	"github.com/jar-backoffice/internal/domain/product"
	"github.com/jar-backoffice/internal/domain/sales"
	"github.com/jar-backoffice/internal/domain/shared"
)

// isClientError reports errors caused by the request rather than the system
func isClientError(err error) bool {
	return IsNotFound(err) || IsInvalidInput(err) || IsConflict(err)
}

// IsConflict reports a write that collides with an existing name
func IsConflict(err error) bool {
	return errors.Is(err, location.ErrDuplicateName) || errors.Is(err, expense.ErrDuplicateGroupName)
}

// IsNotFound reports a missing, deleted or foreign resource
func IsNotFound(err error) bool {
	return errors.Is(err, customer.ErrCustomerNotFound{}) ||
		errors.Is(err, product.ErrProductNotFound{}) ||
		errors.Is(err, sales.ErrSaleNotFound{}) ||
		errors.Is(err, ledger.ErrEntryNotFound{}) ||
		errors.Is(err, location.ErrLocationNotFound{}) ||
		errors.Is(err, expense.ErrGroupNotFound{}) ||
		errors.Is(err, expense.ErrExpenseNotFound{})
}

// IsInvalidInput covers the validation errors returned by the domain constructors
func IsInvalidInput(err error) bool {
	if errors.Is(err, ledger.ErrInvalidAmount{}) || errors.Is(err, ledger.ErrInvalidKind{}) {
		return true
	}
	for _, target := range []error{
		customer.ErrEmptyName,
		product.ErrEmptyName, product.ErrNegativePrice, product.ErrInvalidTaxRate,
		sales.ErrNoItems, sales.ErrInvalidQuantity, sales.ErrNegativePrice, sales.ErrInvalidTaxRate,
		sales.ErrNegativeCharge, sales.ErrNegativePaidValue,
		payment.ErrNonPositiveAmount,
		jar.ErrNegativeJars, jar.ErrNoMovement,
		location.ErrEmptyName, location.ErrInvalidOwner,
		expense.ErrEmptyGroupName, expense.ErrMissingGroup, expense.ErrNonPositiveAmount,
		shared.ErrInvalidDateRange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
