package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jar-backoffice/internal/api_gateway/service"
	"github.com/jar-backoffice/internal/domain/sales"
)

// SaleHandler handles HTTP requests for sales
type SaleHandler struct {
	saleService service.SaleService
	clock       service.Clock
	logger      *slog.Logger
}

func NewSaleHandler(logger *slog.Logger, saleService service.SaleService, clock service.Clock) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
		clock:       clock,
		logger:      logger,
	}
}

// Create records a sale together with its jar movement, payment and ledger entries.
// Totals are always computed server side.
func (h *SaleHandler) Create(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid sale request", "error", err, "correlation_id", who.CorrelationID)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	saleDate, err := parseDate(req.SaleDate, h.clock.Location)
	if err != nil {
		RespondBadRequest(c, "Invalid sale_date, expected YYYY-MM-DD")
		return
	}

	items := make([]service.SaleItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.SaleItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			TaxRate:   item.TaxRate,
			Remark:    item.Remark,
		})
	}

	receipt, err := h.saleService.CreateSale(c.Request.Context(), who, service.SaleInput{
		CustomerID:       req.CustomerID,
		SaleDate:         saleDate,
		Items:            items,
		AdditionalCharge: req.AdditionalCharge,
		JarsOut:          req.JarsOut,
		JarsIn:           req.JarsIn,
		AmountPaid:       req.AmountPaid,
		Remark:           req.Remark,
	})
	if err != nil {
		respondServiceError(c, h.logger, err, "create sale")
		return
	}

	RespondCreated(c, receipt)
}

func (h *SaleHandler) GetByID(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), who.OwnerID, id)
	if err != nil {
		respondServiceError(c, h.logger, err, "get sale")
		return
	}

	RespondOK(c, sale)
}

func (h *SaleHandler) List(c *gin.Context) {
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

	list, total, err := h.saleService.ListSales(c.Request.Context(), who.OwnerID,
		sales.ListFilter{Range: r, CustomerID: q.CustomerID}, page.Page, page.PerPage)
	if err != nil {
		respondServiceError(c, h.logger, err, "list sales")
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, list, page.Page, page.PerPage, total)
}

// Delete soft deletes the sale and its items. Ledger entries stay untouched.
func (h *SaleHandler) Delete(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.saleService.DeleteSale(c.Request.Context(), who.OwnerID, id); err != nil {
		respondServiceError(c, h.logger, err, "delete sale")
		return
	}

	RespondNoContent(c)
}
