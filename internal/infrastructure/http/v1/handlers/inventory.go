package handlers

import (
	"github.com/gin-gonic/gin"

	"storefront/internal/core/apperror"
	"storefront/internal/core/id"
	"storefront/internal/domain/inventory"
	"storefront/internal/infrastructure/http/v1/dto"
)

// InventoryHandler handles HTTP requests for stock adjustments.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// AdjustStock handles POST /products/:id/inventory
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.AdjustStock(c.Request.Context(), productID, *req.Delta)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}
