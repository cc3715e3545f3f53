package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/jar-backoffice/internal/bookkeeping"
	"github.com/jar-backoffice/internal/data/cache"
	"github.com/jar-backoffice/internal/domain/customer"
	"github.com/jar-backoffice/internal/domain/expense"
	"github.com/jar-backoffice/internal/domain/jar"
	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/location"
	"github.com/jar-backoffice/internal/domain/payment"
	"github.com/jar-backoffice/internal/domain/product"
	"github.com/jar-backoffice/internal/domain/report"
	"github.com/jar-backoffice/internal/domain/sales"
	"github.com/jar-backoffice/internal/domain/sequence"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testClock = Clock{
	Now:      func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) },
	Location: time.UTC,
}

// stubTxRunner runs fn without a real transaction and records how it ended
type stubTxRunner struct {
	calls    int
	lastErr  error
	beginErr error
}

func (r *stubTxRunner) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	r.calls++
	if r.beginErr != nil {
		return r.beginErr
	}
	r.lastErr = fn(nil)
	return r.lastErr
}

type MockCustomerRepo struct{ mock.Mock }

func (m *MockCustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepo) GetByID(ctx context.Context, ownerID, id int64) (*customer.Customer, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepo) List(ctx context.Context, ownerID int64, filter customer.ListFilter, limit, offset int) ([]*customer.Customer, error) {
	args := m.Called(ctx, ownerID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepo) Count(ctx context.Context, ownerID int64, filter customer.ListFilter) (int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCustomerRepo) SoftDelete(ctx context.Context, ownerID, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockCustomerRepo) LockForUpdate(ctx context.Context, ownerID, id int64) (*customer.Customer, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepo) WithTx(tx pgx.Tx) customer.Repository {
	return m
}

type MockSequenceRepo struct{ mock.Mock }

func (m *MockSequenceRepo) Next(ctx context.Context, ownerID int64, name sequence.Name) (int64, error) {
	args := m.Called(ctx, ownerID, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSequenceRepo) WithTx(tx pgx.Tx) sequence.Repository {
	return m
}

type MockProductRepo struct{ mock.Mock }

func (m *MockProductRepo) Create(ctx context.Context, p *product.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepo) GetByID(ctx context.Context, ownerID, id int64) (*product.Product, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepo) ListAll(ctx context.Context, ownerID int64) ([]*product.Product, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductRepo) Update(ctx context.Context, p *product.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepo) SoftDelete(ctx context.Context, ownerID, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockProductRepo) WithTx(tx pgx.Tx) product.Repository {
	return m
}

type MockSalesRepo struct{ mock.Mock }

func (m *MockSalesRepo) Create(ctx context.Context, sale *sales.Sale) error {
	return m.Called(ctx, sale).Error(0)
}

func (m *MockSalesRepo) CreateItem(ctx context.Context, item *sales.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockSalesRepo) GetByID(ctx context.Context, ownerID, id int64) (*sales.Sale, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSalesRepo) List(ctx context.Context, ownerID int64, filter sales.ListFilter, limit, offset int) ([]*sales.Sale, error) {
	args := m.Called(ctx, ownerID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sales.Sale), args.Error(1)
}

func (m *MockSalesRepo) Count(ctx context.Context, ownerID int64, filter sales.ListFilter) (int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSalesRepo) SoftDelete(ctx context.Context, ownerID, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockSalesRepo) WithTx(tx pgx.Tx) sales.Repository {
	return m
}

type MockJarRepo struct{ mock.Mock }

func (m *MockJarRepo) Create(ctx context.Context, c *jar.Counter) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockJarRepo) List(ctx context.Context, ownerID int64, filter jar.ListFilter, limit, offset int) ([]*jar.Counter, error) {
	args := m.Called(ctx, ownerID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*jar.Counter), args.Error(1)
}

func (m *MockJarRepo) Count(ctx context.Context, ownerID int64, filter jar.ListFilter) (int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJarRepo) JarsHeld(ctx context.Context, ownerID, customerID int64) (int64, error) {
	args := m.Called(ctx, ownerID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJarRepo) WithTx(tx pgx.Tx) jar.Repository {
	return m
}

type MockPaymentRepo struct{ mock.Mock }

func (m *MockPaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepo) List(ctx context.Context, ownerID int64, filter payment.ListFilter, limit, offset int) ([]*payment.Payment, error) {
	args := m.Called(ctx, ownerID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepo) Count(ctx context.Context, ownerID int64, filter payment.ListFilter) (int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepo) WithTx(tx pgx.Tx) payment.Repository {
	return m
}

type MockLedgerRepo struct{ mock.Mock }

func (m *MockLedgerRepo) Create(ctx context.Context, entry *ledger.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockLedgerRepo) GetLatestActive(ctx context.Context, ownerID, customerID int64) (*ledger.Entry, error) {
	args := m.Called(ctx, ownerID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) GetByID(ctx context.Context, ownerID, id int64) (*ledger.Entry, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) ListByCustomer(ctx context.Context, ownerID, customerID int64, limit, offset int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, ownerID, customerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) CountByCustomer(ctx context.Context, ownerID, customerID int64) (int64, error) {
	args := m.Called(ctx, ownerID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepo) SoftDelete(ctx context.Context, ownerID, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockLedgerRepo) WithTx(tx pgx.Tx) ledger.Repository {
	return m
}

type MockStatementRepo struct{ mock.Mock }

func (m *MockStatementRepo) Upsert(ctx context.Context, line *ledger.StatementLine) error {
	return m.Called(ctx, line).Error(0)
}

func (m *MockStatementRepo) MarkDeleted(ctx context.Context, ownerID, entryID int64, deletedAt time.Time) error {
	return m.Called(ctx, ownerID, entryID, deletedAt).Error(0)
}

func (m *MockStatementRepo) ListByCustomer(ctx context.Context, ownerID, customerID int64, limit, offset int) ([]*ledger.StatementLine, error) {
	args := m.Called(ctx, ownerID, customerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.StatementLine), args.Error(1)
}

func (m *MockStatementRepo) CountByCustomer(ctx context.Context, ownerID, customerID int64) (int64, error) {
	args := m.Called(ctx, ownerID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

type MockReportRepo struct{ mock.Mock }

func (m *MockReportRepo) Sales(ctx context.Context, ownerID int64, filter report.Filter) (*report.SalesSummary, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.SalesSummary), args.Error(1)
}

func (m *MockReportRepo) Collections(ctx context.Context, ownerID int64, filter report.Filter) (*report.CollectionSummary, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.CollectionSummary), args.Error(1)
}

func (m *MockReportRepo) Jars(ctx context.Context, ownerID int64, filter report.Filter) (*report.JarSummary, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.JarSummary), args.Error(1)
}

func (m *MockReportRepo) Expenses(ctx context.Context, ownerID int64, filter report.Filter) (*report.ExpenseSummary, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.ExpenseSummary), args.Error(1)
}

func (m *MockReportRepo) OutstandingBalances(ctx context.Context, ownerID int64, locationID *int64, limit, offset int) ([]*report.CustomerBalance, error) {
	args := m.Called(ctx, ownerID, locationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*report.CustomerBalance), args.Error(1)
}

type MockLocationRepo struct{ mock.Mock }

func (m *MockLocationRepo) Create(ctx context.Context, l *location.Location) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockLocationRepo) GetByID(ctx context.Context, ownerID, id int64) (*location.Location, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*location.Location), args.Error(1)
}

func (m *MockLocationRepo) List(ctx context.Context, ownerID int64, search string, limit, offset int) ([]*location.Location, error) {
	args := m.Called(ctx, ownerID, search, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*location.Location), args.Error(1)
}

func (m *MockLocationRepo) Count(ctx context.Context, ownerID int64, search string) (int64, error) {
	args := m.Called(ctx, ownerID, search)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLocationRepo) Update(ctx context.Context, l *location.Location) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockLocationRepo) SoftDelete(ctx context.Context, ownerID, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockLocationRepo) WithTx(tx pgx.Tx) location.Repository {
	return m
}

type MockExpenseGroupRepo struct{ mock.Mock }

func (m *MockExpenseGroupRepo) Create(ctx context.Context, g *expense.Group) error {
	return m.Called(ctx, g).Error(0)
}

func (m *MockExpenseGroupRepo) GetByID(ctx context.Context, ownerID, id int64) (*expense.Group, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Group), args.Error(1)
}

func (m *MockExpenseGroupRepo) ListAll(ctx context.Context, ownerID int64) ([]*expense.Group, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*expense.Group), args.Error(1)
}

func (m *MockExpenseGroupRepo) Update(ctx context.Context, g *expense.Group) error {
	return m.Called(ctx, g).Error(0)
}

func (m *MockExpenseGroupRepo) SoftDelete(ctx context.Context, ownerID, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockExpenseGroupRepo) WithTx(tx pgx.Tx) expense.GroupRepository {
	return m
}

type MockExpenseRepo struct{ mock.Mock }

func (m *MockExpenseRepo) Create(ctx context.Context, e *expense.Expense) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockExpenseRepo) GetByID(ctx context.Context, ownerID, id int64) (*expense.Expense, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseRepo) List(ctx context.Context, ownerID int64, filter expense.ListFilter, limit, offset int) ([]*expense.Expense, error) {
	args := m.Called(ctx, ownerID, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*expense.Expense), args.Error(1)
}

func (m *MockExpenseRepo) Count(ctx context.Context, ownerID int64, filter expense.ListFilter) (int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpenseRepo) Update(ctx context.Context, e *expense.Expense) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockExpenseRepo) SoftDelete(ctx context.Context, ownerID, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockExpenseRepo) WithTx(tx pgx.Tx) expense.Repository {
	return m
}

type MockChainer struct{ mock.Mock }

func (m *MockChainer) Record(ctx context.Context, req *bookkeeping.EntryRequest) (*ledger.Entry, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockChainer) RecordTx(ctx context.Context, tx pgx.Tx, req *bookkeeping.EntryRequest) (*ledger.Entry, error) {
	args := m.Called(ctx, tx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockChainer) DeleteEntry(ctx context.Context, ownerID, entryID int64, correlationID string) error {
	return m.Called(ctx, ownerID, entryID, correlationID).Error(0)
}

func (m *MockChainer) Committed(entries ...*ledger.Entry) {
	m.Called(entries)
}

type MockListCache struct{ mock.Mock }

func (m *MockListCache) GetCustomers(ctx context.Context, ownerID int64) ([]*customer.Customer, bool, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]*customer.Customer), args.Bool(1), args.Error(2)
}

func (m *MockListCache) SetCustomers(ctx context.Context, ownerID int64, customers []*customer.Customer) error {
	return m.Called(ctx, ownerID, customers).Error(0)
}

func (m *MockListCache) GetProducts(ctx context.Context, ownerID int64) ([]*product.Product, bool, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]*product.Product), args.Bool(1), args.Error(2)
}

func (m *MockListCache) SetProducts(ctx context.Context, ownerID int64, products []*product.Product) error {
	return m.Called(ctx, ownerID, products).Error(0)
}

func (m *MockListCache) Invalidate(ctx context.Context, kind cache.Kind, ownerID int64) error {
	return m.Called(ctx, kind, ownerID).Error(0)
}
