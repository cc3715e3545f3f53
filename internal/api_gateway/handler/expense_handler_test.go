package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jar-backoffice/internal/api_gateway/service"
	"github.com/jar-backoffice/internal/domain/expense"
	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/location"
	"github.com/jar-backoffice/internal/domain/shared"
)

func TestExpenseHandler_Groups(t *testing.T) {
	svc := new(MockExpenseService)
	h := NewExpenseHandler(newTestLogger(), svc, testClock)
	r := newTestRouter(3)
	r.POST("/expense-groups", h.CreateGroup)
	r.GET("/expense-groups", h.ListGroups)
	r.PUT("/expense-groups/:id", h.UpdateGroup)
	r.DELETE("/expense-groups/:id", h.DeleteGroup)

	svc.On("CreateGroup", mock.Anything, int64(3), "Fuel").Return(&expense.Group{ID: 4, Name: "Fuel"}, nil).Once()
	svc.On("CreateGroup", mock.Anything, int64(3), "fuel").Return(nil, expense.ErrDuplicateGroupName).Once()
	svc.On("ListGroups", mock.Anything, int64(3)).Return([]*expense.Group{{ID: 4, Name: "Fuel"}}, nil).Once()
	svc.On("RenameGroup", mock.Anything, int64(3), int64(4), "Diesel").Return(&expense.Group{ID: 4, Name: "Diesel"}, nil).Once()
	svc.On("DeleteGroup", mock.Anything, int64(3), int64(9)).Return(expense.ErrGroupNotFound{GroupID: 9}).Once()

	assert.Equal(t, http.StatusCreated, doRequest(r, http.MethodPost, "/expense-groups", `{"name":"Fuel"}`).Code)
	assert.Equal(t, http.StatusConflict, doRequest(r, http.MethodPost, "/expense-groups", `{"name":"fuel"}`).Code)

	rr := doRequest(r, http.MethodGet, "/expense-groups", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var body envelope[[]expense.Group]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPut, "/expense-groups/4", `{"name":"Diesel"}`).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodDelete, "/expense-groups/9", "").Code)
	svc.AssertExpectations(t)
}

func TestExpenseHandler_Create(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		setup    func(*MockExpenseService)
		wantCode int
		errCode  string
	}{
		{
			name: "records",
			body: `{"group_id":4,"location_id":7,"expense_date":"2024-05-30","amount":"250.50","description":"van fuel"}`,
			setup: func(m *MockExpenseService) {
				m.On("RecordExpense", mock.Anything, mock.MatchedBy(func(c service.Caller) bool {
					return c.OwnerID == 3
				}), mock.MatchedBy(func(in service.ExpenseInput) bool {
					return in.GroupID == 4 && in.LocationID != nil && *in.LocationID == 7 &&
						in.ExpenseDate.Format(shared.DateLayout) == "2024-05-30" &&
						in.Amount == "250.50" && in.Description == "van fuel"
				})).Return(&expense.Expense{ID: 11, Amount: decimal.RequireFromString("250.50")}, nil).Once()
			},
			wantCode: http.StatusCreated,
		},
		{
			name: "numeric amount is taken as written",
			body: `{"group_id":4,"amount":12.5}`,
			setup: func(m *MockExpenseService) {
				m.On("RecordExpense", mock.Anything, mock.Anything, mock.MatchedBy(func(in service.ExpenseInput) bool {
					return in.Amount == "12.5" && in.ExpenseDate.IsZero()
				})).Return(&expense.Expense{ID: 12}, nil).Once()
			},
			wantCode: http.StatusCreated,
		},
		{
			name: "non numeric amount",
			body: `{"group_id":4,"amount":"abc"}`,
			setup: func(m *MockExpenseService) {
				m.On("RecordExpense", mock.Anything, mock.Anything, mock.MatchedBy(func(in service.ExpenseInput) bool {
					return in.Amount == "abc"
				})).Return(nil, ledger.ErrInvalidAmount{Raw: "abc"}).Once()
			},
			wantCode: http.StatusBadRequest,
			errCode:  "INVALID_AMOUNT",
		},
		{
			name:     "group required",
			body:     `{"amount":"5"}`,
			setup:    func(m *MockExpenseService) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "bad date",
			body:     `{"group_id":4,"amount":"5","expense_date":"30/05/2024"}`,
			setup:    func(m *MockExpenseService) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "foreign location",
			body: `{"group_id":4,"amount":"5","location_id":70}`,
			setup: func(m *MockExpenseService) {
				m.On("RecordExpense", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, location.ErrLocationNotFound{LocationID: 70}).Once()
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockExpenseService)
			tt.setup(svc)
			r := newTestRouter(3)
			r.POST("/expenses", NewExpenseHandler(newTestLogger(), svc, testClock).Create)

			rr := doRequest(r, http.MethodPost, "/expenses", tt.body)

			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			if tt.errCode != "" {
				var resp envelope[json.RawMessage]
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.errCode, resp.Error.Code)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestExpenseHandler_List(t *testing.T) {
	svc := new(MockExpenseService)
	r := newTestRouter(3)
	r.GET("/expenses", NewExpenseHandler(newTestLogger(), svc, testClock).List)

	svc.On("ListExpenses", mock.Anything, int64(3), mock.MatchedBy(func(f expense.ListFilter) bool {
		return f.Range.From.Format(shared.DateLayout) == "2024-05-01" &&
			f.Range.To.Format(shared.DateLayout) == "2024-05-31" &&
			f.GroupID != nil && *f.GroupID == 4 &&
			f.LocationID != nil && *f.LocationID == 7
	}), 1, 20).Return([]*expense.Expense{{ID: 1}, {ID: 2}}, int64(2), nil).Once()

	rr := doRequest(r, http.MethodGet, "/expenses?from=2024-05-01&to=2024-05-31&group_id=4&location_id=7&per_page=20", "")

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var body envelope[[]expense.Expense]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)
	require.NotNil(t, body.Meta)
	assert.Equal(t, int64(2), body.Meta.TotalItems)
	svc.AssertExpectations(t)

	t.Run("inverted range", func(t *testing.T) {
		rr := doRequest(r, http.MethodGet, "/expenses?from=2024-05-31&to=2024-05-01", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestExpenseHandler_UpdateAndDelete(t *testing.T) {
	svc := new(MockExpenseService)
	h := NewExpenseHandler(newTestLogger(), svc, testClock)
	r := newTestRouter(3)
	r.GET("/expenses/:id", h.GetByID)
	r.PUT("/expenses/:id", h.Update)
	r.DELETE("/expenses/:id", h.Delete)

	svc.On("GetExpense", mock.Anything, int64(3), int64(11)).Return(&expense.Expense{ID: 11}, nil).Once()
	svc.On("UpdateExpense", mock.Anything, mock.Anything, int64(11), mock.MatchedBy(func(in service.ExpenseInput) bool {
		return in.Amount == "300"
	})).Return(&expense.Expense{ID: 11}, nil).Once()
	svc.On("DeleteExpense", mock.Anything, int64(3), int64(12)).Return(expense.ErrExpenseNotFound{ExpenseID: 12}).Once()

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/expenses/11", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPut, "/expenses/11", `{"group_id":4,"amount":"300"}`).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodDelete, "/expenses/12", "").Code)
	svc.AssertExpectations(t)
}
