package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jar-backoffice/internal/api_gateway/service"
	"github.com/jar-backoffice/internal/domain/jar"
)

type JarHandler struct {
	jarService service.JarService
	clock      service.Clock
	logger     *slog.Logger
}

func NewJarHandler(logger *slog.Logger, jarService service.JarService, clock service.Clock) *JarHandler {
	return &JarHandler{
		jarService: jarService,
		clock:      clock,
		logger:     logger,
	}
}

func (h *JarHandler) Create(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var req JarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	date, err := parseDate(req.CounterDate, h.clock.Location)
	if err != nil {
		RespondBadRequest(c, "Invalid counter_date, expected YYYY-MM-DD")
		return
	}

	counter, err := h.jarService.RecordMovement(c.Request.Context(), who, service.JarInput{
		CustomerID:  req.CustomerID,
		InJar:       req.InJar,
		OutJar:      req.OutJar,
		CounterDate: date,
		Remark:      req.Remark,
	})
	if err != nil {
		respondServiceError(c, h.logger, err, "record jar movement")
		return
	}

	RespondCreated(c, counter)
}

func (h *JarHandler) List(c *gin.Context) {
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

	list, total, err := h.jarService.ListMovements(c.Request.Context(), who.OwnerID,
		jar.ListFilter{Range: r, CustomerID: q.CustomerID}, page.Page, page.PerPage)
	if err != nil {
		respondServiceError(c, h.logger, err, "list jar movements")
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, list, page.Page, page.PerPage, total)
}
