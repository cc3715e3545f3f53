package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jar-backoffice/internal/domain/customer"
	"github.com/jar-backoffice/internal/domain/expense"
	"github.com/jar-backoffice/internal/domain/jar"
	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/location"
	"github.com/jar-backoffice/internal/domain/payment"
	"github.com/jar-backoffice/internal/domain/product"
	"github.com/jar-backoffice/internal/domain/report"
	"github.com/jar-backoffice/internal/domain/sales"
	"github.com/jar-backoffice/internal/domain/shared"
)

// Caller identifies who is acting on behalf of which tenant
type Caller struct {
	OwnerID       int64
	ActorID       *int64
	CorrelationID string
}

// CustomerService manages an owner's customers
type CustomerService interface {
	// CreateCustomer assigns the next CID code and stores the customer
	CreateCustomer(ctx context.Context, caller Caller, in CustomerInput) (*customer.Customer, error)

	// GetCustomer returns ErrCustomerNotFound for missing, deleted or foreign customers
	GetCustomer(ctx context.Context, ownerID, id int64) (*customer.Customer, error)

	ListCustomers(ctx context.Context, ownerID int64, filter customer.ListFilter, page, perPage int) ([]*customer.Customer, int64, error)

	// ActiveCustomers is the cached pick list used by the sale and payment forms
	ActiveCustomers(ctx context.Context, ownerID int64) ([]*customer.Customer, error)

	UpdateCustomer(ctx context.Context, ownerID, id int64, in CustomerInput) (*customer.Customer, error)
	DeleteCustomer(ctx context.Context, ownerID, id int64) error
}

// CustomerInput carries the writable customer fields
type CustomerInput struct {
	Name       string
	Phone      string
	Email      string
	Address    string
	LocationID *int64
	IsActive   *bool
	AddedDate  time.Time
}

// ProductService manages an owner's catalog
type ProductService interface {
	CreateProduct(ctx context.Context, ownerID int64, p *product.Product) (*product.Product, error)
	GetProduct(ctx context.Context, ownerID, id int64) (*product.Product, error)

	// ListProducts serves from the cache when it can
	ListProducts(ctx context.Context, ownerID int64) ([]*product.Product, error)

	UpdateProduct(ctx context.Context, ownerID int64, p *product.Product) (*product.Product, error)
	DeleteProduct(ctx context.Context, ownerID, id int64) error
}

// SaleItemInput is one requested invoice line
type SaleItemInput struct {
	ProductID int64
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal
	TaxRate   *decimal.Decimal
	Remark    string
}

// SaleInput is a sale as submitted at the counter
type SaleInput struct {
	CustomerID       int64
	SaleDate         time.Time
	Items            []SaleItemInput
	AdditionalCharge decimal.Decimal
	JarsOut          int
	JarsIn           int
	AmountPaid       decimal.Decimal
	Remark           string
}

// SaleReceipt is what one sale transaction wrote
type SaleReceipt struct {
	Sale       *sales.Sale      `json:"sale"`
	JarCounter *jar.Counter     `json:"jar_counter,omitempty"`
	Payment    *payment.Payment `json:"payment,omitempty"`
	Entries    []*ledger.Entry  `json:"ledger_entries"`
}

// SaleService records invoices together with their ledger effects
type SaleService interface {
	// CreateSale writes the sale, its items, jar movement, payment and ledger entries atomically
	CreateSale(ctx context.Context, caller Caller, in SaleInput) (*SaleReceipt, error)
	GetSale(ctx context.Context, ownerID, id int64) (*sales.Sale, error)
	ListSales(ctx context.Context, ownerID int64, filter sales.ListFilter, page, perPage int) ([]*sales.Sale, int64, error)

	// DeleteSale soft deletes the sale and its items. The ledger is left as is.
	DeleteSale(ctx context.Context, ownerID, id int64) error
}

// PaymentInput is money received from a customer
type PaymentInput struct {
	CustomerID  int64
	SaleID      *int64
	PaymentDate time.Time
	Amount      string
	Remark      string
}

// PaymentService records collections
type PaymentService interface {
	// RecordPayment stores the payment and its "Payment Received" debit in one transaction
	RecordPayment(ctx context.Context, caller Caller, in PaymentInput) (*payment.Payment, *ledger.Entry, error)
	ListPayments(ctx context.Context, ownerID int64, filter payment.ListFilter, page, perPage int) ([]*payment.Payment, int64, error)
}

// JarInput is a jar movement outside of a sale
type JarInput struct {
	CustomerID  int64
	InJar       int
	OutJar      int
	CounterDate time.Time
	Remark      string
}

type JarService interface {
	RecordMovement(ctx context.Context, caller Caller, in JarInput) (*jar.Counter, error)
	ListMovements(ctx context.Context, ownerID int64, filter jar.ListFilter, page, perPage int) ([]*jar.Counter, int64, error)
	JarsHeld(ctx context.Context, ownerID, customerID int64) (int64, error)
}

// LedgerService exposes a customer's running ledger
type LedgerService interface {
	ListEntries(ctx context.Context, ownerID, customerID int64, page, perPage int) ([]*ledger.Entry, int64, error)

	// Balance is the latest balance_after, or zero for an empty ledger
	Balance(ctx context.Context, ownerID, customerID int64) (decimal.Decimal, error)

	// RecordEntry appends a manual credit or debit
	RecordEntry(ctx context.Context, caller Caller, customerID int64, kind, amount, remark string) (*ledger.Entry, error)
	DeleteEntry(ctx context.Context, caller Caller, entryID int64) error

	// Statement reads the projected read model
	Statement(ctx context.Context, ownerID, customerID int64, page, perPage int) ([]*ledger.StatementLine, int64, error)
}

// LocationService manages the areas customers and expenses are booked to
type LocationService interface {
	CreateLocation(ctx context.Context, ownerID int64, name string) (*location.Location, error)
	GetLocation(ctx context.Context, ownerID, id int64) (*location.Location, error)
	ListLocations(ctx context.Context, ownerID int64, search string, page, perPage int) ([]*location.Location, int64, error)
	RenameLocation(ctx context.Context, ownerID, id int64, name string) (*location.Location, error)
	DeleteLocation(ctx context.Context, ownerID, id int64) error
}

// ExpenseInput is an expense as entered. Amount is parsed like a ledger amount.
type ExpenseInput struct {
	GroupID     int64
	LocationID  *int64
	ExpenseDate time.Time
	Amount      string
	Description string
}

type ExpenseService interface {
	CreateGroup(ctx context.Context, ownerID int64, name string) (*expense.Group, error)
	ListGroups(ctx context.Context, ownerID int64) ([]*expense.Group, error)
	RenameGroup(ctx context.Context, ownerID, id int64, name string) (*expense.Group, error)
	DeleteGroup(ctx context.Context, ownerID, id int64) error

	RecordExpense(ctx context.Context, caller Caller, in ExpenseInput) (*expense.Expense, error)
	GetExpense(ctx context.Context, ownerID, id int64) (*expense.Expense, error)
	ListExpenses(ctx context.Context, ownerID int64, filter expense.ListFilter, page, perPage int) ([]*expense.Expense, int64, error)
	UpdateExpense(ctx context.Context, caller Caller, id int64, in ExpenseInput) (*expense.Expense, error)
	DeleteExpense(ctx context.Context, ownerID, id int64) error
}

// Summary bundles the period aggregates shown on the dashboard
type Summary struct {
	From        string                    `json:"from"`
	To          string                    `json:"to"`
	Sales       *report.SalesSummary      `json:"sales"`
	Collections *report.CollectionSummary `json:"collections"`
	Jars        *report.JarSummary        `json:"jars"`
	NetJars     int64                     `json:"net_jars"`
	Expenses    *report.ExpenseSummary    `json:"expenses"`
	// NetCash is collections less expenses
	NetCash decimal.Decimal `json:"net_cash"`
}

type ReportService interface {
	Summary(ctx context.Context, ownerID int64, filter report.Filter) (*Summary, error)
	OutstandingBalances(ctx context.Context, ownerID int64, locationID *int64, page, perPage int) ([]*report.CustomerBalance, error)
}

// Clock supplies the current time and the business time zone
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// Today is the current business date
func (c Clock) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return shared.BusinessDate(now(), c.Location)
}

// DateOr returns d, or today when d is zero
func (c Clock) DateOr(d time.Time) time.Time {
	if d.IsZero() {
		return c.Today()
	}
	return d
}

func offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
