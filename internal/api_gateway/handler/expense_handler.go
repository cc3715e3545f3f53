package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jar-backoffice/internal/api_gateway/service"
	"github.com/jar-backoffice/internal/domain/expense"
)

// ExpenseHandler serves expense groups and the expenses booked under them
type ExpenseHandler struct {
	expenseService service.ExpenseService
	clock          service.Clock
	logger         *slog.Logger
}

func NewExpenseHandler(logger *slog.Logger, expenseService service.ExpenseService, clock service.Clock) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		clock:          clock,
		logger:         logger,
	}
}

func (h *ExpenseHandler) CreateGroup(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.expenseService.CreateGroup(c.Request.Context(), who.OwnerID, req.Name)
	if err != nil {
		respondServiceError(c, h.logger, err, "create expense group")
		return
	}

	RespondCreated(c, created)
}

func (h *ExpenseHandler) ListGroups(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	groups, err := h.expenseService.ListGroups(c.Request.Context(), who.OwnerID)
	if err != nil {
		respondServiceError(c, h.logger, err, "list expense groups")
		return
	}

	RespondOK(c, groups)
}

func (h *ExpenseHandler) UpdateGroup(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	updated, err := h.expenseService.RenameGroup(c.Request.Context(), who.OwnerID, id, req.Name)
	if err != nil {
		respondServiceError(c, h.logger, err, "update expense group")
		return
	}

	RespondOK(c, updated)
}

func (h *ExpenseHandler) DeleteGroup(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.expenseService.DeleteGroup(c.Request.Context(), who.OwnerID, id); err != nil {
		respondServiceError(c, h.logger, err, "delete expense group")
		return
	}

	RespondNoContent(c)
}

func (h *ExpenseHandler) input(c *gin.Context) (service.ExpenseInput, bool) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return service.ExpenseInput{}, false
	}
	expenseDate, err := parseDate(req.ExpenseDate, h.clock.Location)
	if err != nil {
		RespondBadRequest(c, "Invalid expense_date, expected YYYY-MM-DD")
		return service.ExpenseInput{}, false
	}
	return service.ExpenseInput{
		GroupID:     req.GroupID,
		LocationID:  req.LocationID,
		ExpenseDate: expenseDate,
		Amount:      req.Amount.String(),
		Description: req.Description,
	}, true
}

func (h *ExpenseHandler) Create(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	in, ok := h.input(c)
	if !ok {
		return
	}

	created, err := h.expenseService.RecordExpense(c.Request.Context(), who, in)
	if err != nil {
		respondServiceError(c, h.logger, err, "record expense")
		return
	}

	RespondCreated(c, created)
}

func (h *ExpenseHandler) GetByID(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	found, err := h.expenseService.GetExpense(c.Request.Context(), who.OwnerID, id)
	if err != nil {
		respondServiceError(c, h.logger, err, "get expense")
		return
	}

	RespondOK(c, found)
}

// List pages through expenses in a date range, optionally by group and location
func (h *ExpenseHandler) List(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var q ExpenseListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	r, err := dateRange(q.DateRangeQuery, h.clock)
	if err != nil {
		RespondBadRequest(c, "Invalid date range: "+err.Error())
		return
	}

	filter := expense.ListFilter{Range: r, GroupID: q.GroupID, LocationID: q.LocationID}
	list, total, err := h.expenseService.ListExpenses(c.Request.Context(), who.OwnerID, filter, q.Page, q.PerPage)
	if err != nil {
		respondServiceError(c, h.logger, err, "list expenses")
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, list, q.Page, q.PerPage, total)
}

func (h *ExpenseHandler) Update(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, ok := h.input(c)
	if !ok {
		return
	}

	updated, err := h.expenseService.UpdateExpense(c.Request.Context(), who, id, in)
	if err != nil {
		respondServiceError(c, h.logger, err, "update expense")
		return
	}

	RespondOK(c, updated)
}

func (h *ExpenseHandler) Delete(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), who.OwnerID, id); err != nil {
		respondServiceError(c, h.logger, err, "delete expense")
		return
	}

	RespondNoContent(c)
}
