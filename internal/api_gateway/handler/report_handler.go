package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/jar-backoffice/internal/api_gateway/service"
	"github.com/jar-backoffice/internal/domain/report"
)

type ReportHandler struct {
	reportService service.ReportService
	clock         service.Clock
	logger        *slog.Logger
}

func NewReportHandler(logger *slog.Logger, reportService service.ReportService, clock service.Clock) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		clock:         clock,
		logger:        logger,
	}
}

// Summary aggregates sales, collections, expenses and jars for the date range
func (h *ReportHandler) Summary(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var q DateRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	r, err := dateRange(q, h.clock)
	if err != nil {
		RespondBadRequest(c, "Invalid date range: "+err.Error())
		return
	}

	summary, err := h.reportService.Summary(c.Request.Context(), who.OwnerID, report.Filter{Range: r, LocationID: q.LocationID})
	if err != nil {
		respondServiceError(c, h.logger, err, "build report")
		return
	}

	RespondOK(c, summary)
}

// Outstanding lists customers with a non-zero balance, largest first
func (h *ReportHandler) Outstanding(c *gin.Context) {
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

	balances, err := h.reportService.OutstandingBalances(c.Request.Context(), who.OwnerID, q.LocationID, page.Page, page.PerPage)
	if err != nil {
		respondServiceError(c, h.logger, err, "list outstanding balances")
		return
	}

	RespondOK(c, balances)
}
