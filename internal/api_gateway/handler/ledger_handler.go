package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jar-backoffice/internal/api_gateway/service"
)

// LedgerHandler serves a customer's running ledger and its projected statement
type LedgerHandler struct {
	ledgerService service.LedgerService
	jarService    service.JarService
	logger        *slog.Logger
}

func NewLedgerHandler(logger *slog.Logger, ledgerService service.LedgerService, jarService service.JarService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		jarService:    jarService,
		logger:        logger,
	}
}

// List returns the customer's live entries in insertion order
func (h *LedgerHandler) List(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	customerID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var page PaginationParams
	if err := c.ShouldBindQuery(&page); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	entries, total, err := h.ledgerService.ListEntries(c.Request.Context(), who.OwnerID, customerID, page.Page, page.PerPage)
	if err != nil {
		respondServiceError(c, h.logger, err, "list ledger entries")
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, entries, page.Page, page.PerPage, total)
}

// Balance reports the current running balance and the jars the customer holds
func (h *LedgerHandler) Balance(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	customerID, ok := pathID(c, "id")
	if !ok {
		return
	}

	balance, err := h.ledgerService.Balance(c.Request.Context(), who.OwnerID, customerID)
	if err != nil {
		respondServiceError(c, h.logger, err, "get balance")
		return
	}

	response := BalanceResponse{CustomerID: customerID, Balance: balance}
	held, err := h.jarService.JarsHeld(c.Request.Context(), who.OwnerID, customerID)
	if err != nil {
		h.logger.Warn("Failed to count jars held", "customer_id", customerID, "error", err)
	} else {
		response.JarsHeld = &held
	}

	RespondOK(c, response)
}

// Create appends a manual credit or debit
func (h *LedgerHandler) Create(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	customerID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entry, err := h.ledgerService.RecordEntry(c.Request.Context(), who, customerID, req.Kind, req.Amount.String(), req.Remark)
	if err != nil {
		respondServiceError(c, h.logger, err, "record ledger entry")
		return
	}

	RespondCreated(c, entry)
}

// Delete soft deletes one entry. Later balances are not recomputed.
func (h *LedgerHandler) Delete(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	entryID, ok := pathID(c, "entry_id")
	if !ok {
		return
	}

	if err := h.ledgerService.DeleteEntry(c.Request.Context(), who, entryID); err != nil {
		respondServiceError(c, h.logger, err, "delete ledger entry")
		return
	}

	RespondNoContent(c)
}

func (h *LedgerHandler) Statement(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	customerID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var page PaginationParams
	if err := c.ShouldBindQuery(&page); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	lines, total, err := h.ledgerService.Statement(c.Request.Context(), who.OwnerID, customerID, page.Page, page.PerPage)
	if err != nil {
		respondServiceError(c, h.logger, err, "get statement")
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, lines, page.Page, page.PerPage, total)
}
