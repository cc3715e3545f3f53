package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jar-backoffice/internal/api_gateway/service"
	"github.com/jar-backoffice/internal/domain/payment"
)

// PaymentHandler handles HTTP requests for collections
type PaymentHandler struct {
	paymentService service.PaymentService
	clock          service.Clock
	logger         *slog.Logger
}

func NewPaymentHandler(logger *slog.Logger, paymentService service.PaymentService, clock service.Clock) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		clock:          clock,
		logger:         logger,
	}
}

func (h *PaymentHandler) Create(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	paymentDate, err := parseDate(req.PaymentDate, h.clock.Location)
	if err != nil {
		RespondBadRequest(c, "Invalid payment_date, expected YYYY-MM-DD")
		return
	}

	p, entry, err := h.paymentService.RecordPayment(c.Request.Context(), who, service.PaymentInput{
		CustomerID:  req.CustomerID,
		SaleID:      req.SaleID,
		PaymentDate: paymentDate,
		Amount:      req.Amount.String(),
		Remark:      req.Remark,
	})
	if err != nil {
		respondServiceError(c, h.logger, err, "record payment")
		return
	}

	RespondCreated(c, PaymentResponse{Payment: p, Entry: entry})
}

func (h *PaymentHandler) List(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var page PaginationParams
	var q DateRangeQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	r, err := dateRange(q, h.clock)
	if err != nil {
		RespondBadRequest(c, "Invalid date range: "+err.Error())
		return
	}

	list, total, err := h.paymentService.ListPayments(c.Request.Context(), who.OwnerID,
		payment.ListFilter{Range: r, CustomerID: q.CustomerID}, page.Page, page.PerPage)
	if err != nil {
		respondServiceError(c, h.logger, err, "list payments")
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, list, page.Page, page.PerPage, total)
}
