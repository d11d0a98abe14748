package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sales_api/internal/catalog"
	"sales_api/internal/metrics"
	"sales_api/internal/sales"
)

// Dependencies are the services the routes are served from. Metrics may be
// nil, in which case /metrics is not registered.
type Dependencies struct {
	Sales   *sales.Service
	Catalog *catalog.Service
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// InitRoutes registers the sales, catalog and health endpoints on the given
// Gin engine.
func InitRoutes(e *gin.Engine, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e.Use(requestLogger(logger, deps.Metrics))

	salesHandler := NewSalesHandler(deps.Sales, logger)
	e.POST("/sales", salesHandler.handleCreateSale)
	e.GET("/sales", salesHandler.handleListSales)
	e.GET("/sales/:id", salesHandler.handleGetSale)
	e.PATCH("/sales/:id", salesHandler.handlePatchSale)
	e.POST("/sales/:id/cancel", salesHandler.handleCancelSale)

	catalogHandler := NewCatalogHandler(deps.Catalog, logger)

	customers := e.Group("/customers")
	customers.POST("", catalogHandler.handleCreateCustomer)
	customers.GET("", catalogHandler.handleListCustomers)
	customers.GET("/:id", catalogHandler.handleGetCustomer)
	customers.POST("/:id/activate", catalogHandler.customerStatus(true))
	customers.POST("/:id/deactivate", catalogHandler.customerStatus(false))

	branches := e.Group("/branches")
	branches.POST("", catalogHandler.handleCreateBranch)
	branches.GET("", catalogHandler.handleListBranches)
	branches.GET("/:id", catalogHandler.handleGetBranch)
	branches.POST("/:id/activate", catalogHandler.branchStatus(true))
	branches.POST("/:id/deactivate", catalogHandler.branchStatus(false))

	products := e.Group("/products")
	products.POST("", catalogHandler.handleCreateProduct)
	products.GET("", catalogHandler.handleListProducts)
	products.GET("/:id", catalogHandler.handleGetProduct)
	products.POST("/:id/activate", catalogHandler.productStatus(true))
	products.POST("/:id/deactivate", catalogHandler.productStatus(false))
	products.POST("/:id/stock", catalogHandler.handleRestock)

	if deps.Metrics != nil {
		e.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
