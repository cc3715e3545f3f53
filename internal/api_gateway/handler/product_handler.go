package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/jar-backoffice/internal/api_gateway/service"
	"github.com/jar-backoffice/internal/domain/product"
)

// ProductHandler handles HTTP requests for the catalog
type ProductHandler struct {
	productService service.ProductService
	logger         *slog.Logger
}

func NewProductHandler(logger *slog.Logger, productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

func toProduct(req ProductRequest) *product.Product {
	return &product.Product{
		Name:         req.Name,
		Description:  req.Description,
		Rate:         req.Rate,
		SellingPrice: req.SellingPrice,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		TaxRate:      req.TaxRate,
	}
}

func (h *ProductHandler) Create(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.productService.CreateProduct(c.Request.Context(), who.OwnerID, toProduct(req))
	if err != nil {
		respondServiceError(c, h.logger, err, "create product")
		return
	}

	RespondCreated(c, created)
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	found, err := h.productService.GetProduct(c.Request.Context(), who.OwnerID, id)
	if err != nil {
		respondServiceError(c, h.logger, err, "get product")
		return
	}

	RespondOK(c, found)
}

func (h *ProductHandler) List(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	list, err := h.productService.ListProducts(c.Request.Context(), who.OwnerID)
	if err != nil {
		respondServiceError(c, h.logger, err, "list products")
		return
	}

	RespondOK(c, list)
}

func (h *ProductHandler) Update(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	p := toProduct(req)
	p.ID = id

	updated, err := h.productService.UpdateProduct(c.Request.Context(), who.OwnerID, p)
	if err != nil {
		respondServiceError(c, h.logger, err, "update product")
		return
	}

	RespondOK(c, updated)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), who.OwnerID, id); err != nil {
		respondServiceError(c, h.logger, err, "delete product")
		return
	}

	RespondNoContent(c)
}
