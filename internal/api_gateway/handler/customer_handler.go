package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jar-backoffice/internal/api_gateway/service"
	"github.com/jar-backoffice/internal/domain/customer"
)

// CustomerHandler handles HTTP requests for customers
type CustomerHandler struct {
	customerService service.CustomerService
	clock           service.Clock
	logger          *slog.Logger
}

func NewCustomerHandler(logger *slog.Logger, customerService service.CustomerService, clock service.Clock) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		clock:           clock,
		logger:          logger,
	}
}

func (h *CustomerHandler) input(c *gin.Context, req CustomerRequest) (service.CustomerInput, bool) {
	addedDate, err := parseDate(req.AddedDate, h.clock.Location)
	if err != nil {
		RespondBadRequest(c, "Invalid added_date, expected YYYY-MM-DD")
		return service.CustomerInput{}, false
	}
	return service.CustomerInput{
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
		LocationID: req.LocationID,
		IsActive:   req.IsActive,
		AddedDate:  addedDate,
	}, true
}

// Create registers a customer and assigns the next CID code
func (h *CustomerHandler) Create(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	in, ok := h.input(c, req)
	if !ok {
		return
	}

	created, err := h.customerService.CreateCustomer(c.Request.Context(), who, in)
	if err != nil {
		respondServiceError(c, h.logger, err, "create customer")
		return
	}

	RespondCreated(c, created)
}

func (h *CustomerHandler) GetByID(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	found, err := h.customerService.GetCustomer(c.Request.Context(), who.OwnerID, id)
	if err != nil {
		respondServiceError(c, h.logger, err, "get customer")
		return
	}

	RespondOK(c, found)
}

// List pages through customers, filtered by search text, location and active flag
func (h *CustomerHandler) List(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var q CustomerListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := customer.ListFilter{Search: q.Search, LocationID: q.LocationID, ActiveOnly: q.ActiveOnly}
	list, total, err := h.customerService.ListCustomers(c.Request.Context(), who.OwnerID, filter, q.Page, q.PerPage)
	if err != nil {
		respondServiceError(c, h.logger, err, "list customers")
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, list, q.Page, q.PerPage, total)
}

// Active returns the cached pick list of active customers
func (h *CustomerHandler) Active(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	list, err := h.customerService.ActiveCustomers(c.Request.Context(), who.OwnerID)
	if err != nil {
		respondServiceError(c, h.logger, err, "list active customers")
		return
	}

	RespondOK(c, list)
}

func (h *CustomerHandler) Update(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	in, ok := h.input(c, req)
	if !ok {
		return
	}

	updated, err := h.customerService.UpdateCustomer(c.Request.Context(), who.OwnerID, id, in)
	if err != nil {
		respondServiceError(c, h.logger, err, "update customer")
		return
	}

	RespondOK(c, updated)
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), who.OwnerID, id); err != nil {
		respondServiceError(c, h.logger, err, "delete customer")
		return
	}

	RespondNoContent(c)
}
