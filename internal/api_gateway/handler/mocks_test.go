package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/jar-backoffice/internal/api_gateway/middleware"
	"github.com/jar-backoffice/internal/api_gateway/service"
	"github.com/jar-backoffice/internal/domain/customer"
	"github.com/jar-backoffice/internal/domain/expense"
	"github.com/jar-backoffice/internal/domain/jar"
	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/location"
	"github.com/jar-backoffice/internal/domain/payment"
	"github.com/jar-backoffice/internal/domain/sales"
)

var testClock = service.Clock{
	Now:      func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) },
	Location: time.UTC,
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter stands in for the auth middleware with a fixed owner and actor
func newTestRouter(ownerID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CorrelationID())
	r.Use(func(c *gin.Context) {
		if ownerID > 0 {
			c.Set(middleware.OwnerIDKey, ownerID)
			c.Set(middleware.ActorIDKey, int64(77))
		}
		c.Next()
	})
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.CorrelationIDHeader, "corr-test")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type MockCustomerService struct{ mock.Mock }

func (m *MockCustomerService) CreateCustomer(ctx context.Context, caller service.Caller, in service.CustomerInput) (*customer.Customer, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, ownerID, id int64) (*customer.Customer, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) ListCustomers(ctx context.Context, ownerID int64, filter customer.ListFilter, page, perPage int) ([]*customer.Customer, int64, error) {
	args := m.Called(ctx, ownerID, filter, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*customer.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerService) ActiveCustomers(ctx context.Context, ownerID int64) ([]*customer.Customer, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) UpdateCustomer(ctx context.Context, ownerID, id int64, in service.CustomerInput) (*customer.Customer, error) {
	args := m.Called(ctx, ownerID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) DeleteCustomer(ctx context.Context, ownerID, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

type MockSaleService struct{ mock.Mock }

func (m *MockSaleService) CreateSale(ctx context.Context, caller service.Caller, in service.SaleInput) (*service.SaleReceipt, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SaleReceipt), args.Error(1)
}

func (m *MockSaleService) GetSale(ctx context.Context, ownerID, id int64) (*sales.Sale, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleService) ListSales(ctx context.Context, ownerID int64, filter sales.ListFilter, page, perPage int) ([]*sales.Sale, int64, error) {
	args := m.Called(ctx, ownerID, filter, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*sales.Sale), args.Get(1).(int64), args.Error(2)
}

func (m *MockSaleService) DeleteSale(ctx context.Context, ownerID, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

type MockPaymentService struct{ mock.Mock }

func (m *MockPaymentService) RecordPayment(ctx context.Context, caller service.Caller, in service.PaymentInput) (*payment.Payment, *ledger.Entry, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*payment.Payment), args.Get(1).(*ledger.Entry), args.Error(2)
}

func (m *MockPaymentService) ListPayments(ctx context.Context, ownerID int64, filter payment.ListFilter, page, perPage int) ([]*payment.Payment, int64, error) {
	args := m.Called(ctx, ownerID, filter, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*payment.Payment), args.Get(1).(int64), args.Error(2)
}

type MockLedgerService struct{ mock.Mock }

func (m *MockLedgerService) ListEntries(ctx context.Context, ownerID, customerID int64, page, perPage int) ([]*ledger.Entry, int64, error) {
	args := m.Called(ctx, ownerID, customerID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*ledger.Entry), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerService) Balance(ctx context.Context, ownerID, customerID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, ownerID, customerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) RecordEntry(ctx context.Context, caller service.Caller, customerID int64, kind, amount, remark string) (*ledger.Entry, error) {
	args := m.Called(ctx, caller, customerID, kind, amount, remark)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerService) DeleteEntry(ctx context.Context, caller service.Caller, entryID int64) error {
	return m.Called(ctx, caller, entryID).Error(0)
}

func (m *MockLedgerService) Statement(ctx context.Context, ownerID, customerID int64, page, perPage int) ([]*ledger.StatementLine, int64, error) {
	args := m.Called(ctx, ownerID, customerID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*ledger.StatementLine), args.Get(1).(int64), args.Error(2)
}

type MockJarService struct{ mock.Mock }

func (m *MockJarService) RecordMovement(ctx context.Context, caller service.Caller, in service.JarInput) (*jar.Counter, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jar.Counter), args.Error(1)
}

func (m *MockJarService) ListMovements(ctx context.Context, ownerID int64, filter jar.ListFilter, page, perPage int) ([]*jar.Counter, int64, error) {
	args := m.Called(ctx, ownerID, filter, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*jar.Counter), args.Get(1).(int64), args.Error(2)
}

func (m *MockJarService) JarsHeld(ctx context.Context, ownerID, customerID int64) (int64, error) {
	args := m.Called(ctx, ownerID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

// envelope decodes the standard response with a typed payload
type envelope[T any] struct {
	Data          T          `json:"data"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *MetaInfo  `json:"meta,omitempty"`
}

type MockLocationService struct{ mock.Mock }

func (m *MockLocationService) CreateLocation(ctx context.Context, ownerID int64, name string) (*location.Location, error) {
	args := m.Called(ctx, ownerID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*location.Location), args.Error(1)
}

func (m *MockLocationService) GetLocation(ctx context.Context, ownerID, id int64) (*location.Location, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*location.Location), args.Error(1)
}

func (m *MockLocationService) ListLocations(ctx context.Context, ownerID int64, search string, page, perPage int) ([]*location.Location, int64, error) {
	args := m.Called(ctx, ownerID, search, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*location.Location), args.Get(1).(int64), args.Error(2)
}

func (m *MockLocationService) RenameLocation(ctx context.Context, ownerID, id int64, name string) (*location.Location, error) {
	args := m.Called(ctx, ownerID, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*location.Location), args.Error(1)
}

func (m *MockLocationService) DeleteLocation(ctx context.Context, ownerID, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

type MockExpenseService struct{ mock.Mock }

func (m *MockExpenseService) CreateGroup(ctx context.Context, ownerID int64, name string) (*expense.Group, error) {
	args := m.Called(ctx, ownerID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Group), args.Error(1)
}

func (m *MockExpenseService) ListGroups(ctx context.Context, ownerID int64) ([]*expense.Group, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*expense.Group), args.Error(1)
}

func (m *MockExpenseService) RenameGroup(ctx context.Context, ownerID, id int64, name string) (*expense.Group, error) {
	args := m.Called(ctx, ownerID, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Group), args.Error(1)
}

func (m *MockExpenseService) DeleteGroup(ctx context.Context, ownerID, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockExpenseService) RecordExpense(ctx context.Context, caller service.Caller, in service.ExpenseInput) (*expense.Expense, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseService) GetExpense(ctx context.Context, ownerID, id int64) (*expense.Expense, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseService) ListExpenses(ctx context.Context, ownerID int64, filter expense.ListFilter, page, perPage int) ([]*expense.Expense, int64, error) {
	args := m.Called(ctx, ownerID, filter, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*expense.Expense), args.Get(1).(int64), args.Error(2)
}

func (m *MockExpenseService) UpdateExpense(ctx context.Context, caller service.Caller, id int64, in service.ExpenseInput) (*expense.Expense, error) {
	args := m.Called(ctx, caller, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseService) DeleteExpense(ctx context.Context, ownerID, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}
