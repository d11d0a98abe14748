package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sales_api/internal/catalog"
)

// catalogHandler serves customers, branches and products.
type catalogHandler struct {
	catalogService *catalog.Service
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *catalog.Service, logger *zap.Logger) *catalogHandler {
	return &catalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

func (h *catalogHandler) handleCreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.logger, err)
		return
	}

	customer, err := h.catalogService.CreateCustomer(c.Request.Context(), req.toCommand())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomerResponse(customer))
}

func (h *catalogHandler) handleListCustomers(c *gin.Context) {
	list, err := h.catalogService.ListCustomers(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": mapAll(list, toCustomerResponse)})
}

func (h *catalogHandler) handleGetCustomer(c *gin.Context) {
	id, ok := pathID(c, h.logger)
	if !ok {
		return
	}

	customer, err := h.catalogService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(customer))
}

func (h *catalogHandler) customerStatus(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, h.logger)
		if !ok {
			return
		}

		customer, err := h.catalogService.SetCustomerActive(c.Request.Context(), id, active)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, toCustomerResponse(customer))
	}
}

func (h *catalogHandler) handleCreateBranch(c *gin.Context) {
	var req createBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.logger, err)
		return
	}

	branch, err := h.catalogService.CreateBranch(c.Request.Context(), req.toCommand())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toBranchResponse(branch))
}

func (h *catalogHandler) handleListBranches(c *gin.Context) {
	list, err := h.catalogService.ListBranches(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": mapAll(list, toBranchResponse)})
}

func (h *catalogHandler) handleGetBranch(c *gin.Context) {
	id, ok := pathID(c, h.logger)
	if !ok {
		return
	}

	branch, err := h.catalogService.GetBranch(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toBranchResponse(branch))
}

func (h *catalogHandler) branchStatus(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, h.logger)
		if !ok {
			return
		}

		branch, err := h.catalogService.SetBranchActive(c.Request.Context(), id, active)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, toBranchResponse(branch))
	}
}

func (h *catalogHandler) handleCreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.logger, err)
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), req.toCommand())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(product))
}

func (h *catalogHandler) handleListProducts(c *gin.Context) {
	list, err := h.catalogService.ListProducts(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": mapAll(list, toProductResponse)})
}

func (h *catalogHandler) handleGetProduct(c *gin.Context) {
	id, ok := pathID(c, h.logger)
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

func (h *catalogHandler) productStatus(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, h.logger)
		if !ok {
			return
		}

		product, err := h.catalogService.SetProductActive(c.Request.Context(), id, active)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, toProductResponse(product))
	}
}

// handleRestock handles POST /products/:id/stock.
func (h *catalogHandler) handleRestock(c *gin.Context) {
	id, ok := pathID(c, h.logger)
	if !ok {
		return
	}

	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, h.logger, err)
		return
	}

	product, err := h.catalogService.Restock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}
