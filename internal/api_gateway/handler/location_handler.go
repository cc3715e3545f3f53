package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jar-backoffice/internal/api_gateway/service"
)

// LocationHandler handles HTTP requests for delivery locations
type LocationHandler struct {
	locationService service.LocationService
	logger          *slog.Logger
}

func NewLocationHandler(logger *slog.Logger, locationService service.LocationService) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
		logger:          logger,
	}
}

func (h *LocationHandler) Create(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var req NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.locationService.CreateLocation(c.Request.Context(), who.OwnerID, req.Name)
	if err != nil {
		respondServiceError(c, h.logger, err, "create location")
		return
	}

	RespondCreated(c, created)
}

func (h *LocationHandler) GetByID(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	found, err := h.locationService.GetLocation(c.Request.Context(), who.OwnerID, id)
	if err != nil {
		respondServiceError(c, h.logger, err, "get location")
		return
	}

	RespondOK(c, found)
}

func (h *LocationHandler) List(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	list, total, err := h.locationService.ListLocations(c.Request.Context(), who.OwnerID, q.Search, q.Page, q.PerPage)
	if err != nil {
		respondServiceError(c, h.logger, err, "list locations")
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, list, q.Page, q.PerPage, total)
}

func (h *LocationHandler) Update(c *gin.Context) {
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

	updated, err := h.locationService.RenameLocation(c.Request.Context(), who.OwnerID, id, req.Name)
	if err != nil {
		respondServiceError(c, h.logger, err, "update location")
		return
	}

	RespondOK(c, updated)
}

func (h *LocationHandler) Delete(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.locationService.DeleteLocation(c.Request.Context(), who.OwnerID, id); err != nil {
		respondServiceError(c, h.logger, err, "delete location")
		return
	}

	RespondNoContent(c)
}
