package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sales_api/internal/sales"
)

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

// handleCreateSale handles the POST /sales endpoint.
func (h *salesHandler) handleCreateSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.logger, err)
		return
	}

	cmd, err := req.toCommand()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	sale, err := h.salesService.CreateSale(c.Request.Context(), cmd)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, toSaleResponse(sale))
}

func (h *salesHandler) handleListSales(c *gin.Context) {
	list, err := h.salesService.ListSales(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results":  mapAll(list, toSaleResponse),
		"metadata": gin.H{"total": len(list)},
	})
}

func (h *salesHandler) handleGetSale(c *gin.Context) {
	id, ok := pathID(c, h.logger)
	if !ok {
		return
	}

	sale, err := h.salesService.GetSale(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toSaleResponse(sale))
}

// handleCancelSale handles the POST /sales/:id/cancel endpoint.
func (h *salesHandler) handleCancelSale(c *gin.Context) {
	id, ok := pathID(c, h.logger)
	if !ok {
		return
	}
	h.cancel(c, id)
}

// handlePatchSale accepts {"status": "cancelled"}. Reactivation is not
// offered over HTTP.
func (h *salesHandler) handlePatchSale(c *gin.Context) {
	id, ok := pathID(c, h.logger)
	if !ok {
		return
	}

	var req patchSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.logger, err)
		return
	}
	if !strings.EqualFold(req.Status, "cancelled") {
		writeError(c, h.logger, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status))
		return
	}
	h.cancel(c, id)
}

func (h *salesHandler) cancel(c *gin.Context, id uuid.UUID) {
	sale, err := h.salesService.CancelSale(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toCancelSaleResponse(sale))
}

func pathID(c *gin.Context, logger *zap.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, logger, fmt.Errorf("%w: invalid id %q", sales.ErrValidation, c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}
