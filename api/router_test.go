package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"sales_api/internal/catalog"
	"sales_api/internal/metrics"
	"sales_api/internal/sales"
)

func initRoutesTests(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	logger := zaptest.NewLogger(t)
	storage := sales.NewLocalStorage()
	InitRoutes(router, Dependencies{
		Sales:   sales.NewService(storage, nil, logger),
		Catalog: catalog.NewService(storage, logger),
		Metrics: metrics.New(),
		Logger:  logger,
	})
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type catalogIDs struct {
	customer, branch, product string
}

func seed(t *testing.T, router *gin.Engine, stock int) catalogIDs {
	t.Helper()

	w := do(t, router, http.MethodPost, "/customers", map[string]any{
		"name":     "Ana Souza",
		"email":    "ana@example.com",
		"document": "12345678901",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	customer := decode[customerResponse](t, w)

	w = do(t, router, http.MethodPost, "/branches", map[string]any{"name": "Downtown", "code": "DT-01"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	branch := decode[branchResponse](t, w)

	w = do(t, router, http.MethodPost, "/products", map[string]any{
		"name":           "Notebook A5",
		"sku":            "NB-A5",
		"price":          "100.00",
		"stock_quantity": stock,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := decode[productResponse](t, w)
	assert.Equal(t, "100.00", product.Price)

	return catalogIDs{customer: customer.ID, branch: branch.ID, product: product.ID}
}

func saleBody(ids catalogIDs, quantity int) map[string]any {
	return map[string]any{
		"customer_id": ids.customer,
		"branch_id":   ids.branch,
		"items": []map[string]any{
			{"product_id": ids.product, "quantity": quantity},
		},
	}
}

// TestSalesHappyPath_FullFlow covers POST -> GET -> cancel -> GET.
func TestSalesHappyPath_FullFlow(t *testing.T) {
	router := initRoutesTests(t)
	ids := seed(t, router, 10)

	var saleID string

	t.Run("POST_CreateSale", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/sales", saleBody(ids, 4))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		sale := decode[saleResponse](t, w)
		saleID = sale.ID
		assert.Regexp(t, `^SALE-\d{8}-0001$`, sale.SaleNumber)
		assert.Equal(t, "360.00", sale.TotalAmount)
		assert.Equal(t, "DT-01", sale.BranchCode)
		assert.Equal(t, "ana@example.com", sale.CustomerEmail)
		require.Len(t, sale.Items, 1)
		assert.Equal(t, "40.00", sale.Items[0].Discount)
		assert.Equal(t, "NB-A5", sale.Items[0].ProductSKU)
		assert.False(t, sale.IsCancelled)
	})

	t.Run("GET_ProductStockDecremented", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/products/"+ids.product, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 6, decode[productResponse](t, w).StockQuantity)
	})

	t.Run("GET_Sale", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/sales/"+saleID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, saleID, decode[saleResponse](t, w).ID)
	})

	t.Run("GET_ListSales", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/sales", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decode[struct {
			Results  []saleResponse `json:"results"`
			Metadata struct {
				Total int `json:"total"`
			} `json:"metadata"`
		}](t, w)
		assert.Equal(t, 1, body.Metadata.Total)
		require.Len(t, body.Results, 1)
	})

	t.Run("POST_CancelSale", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/sales/"+saleID+"/cancel", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[cancelSaleResponse](t, w)
		assert.True(t, resp.IsCancelled)
		assert.NotNil(t, resp.CancelledAt)
	})

	t.Run("POST_CancelSaleTwice", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/sales/"+saleID+"/cancel", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "already cancelled")
	})

	t.Run("GET_ProductStockRestored", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/products/"+ids.product, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 10, decode[productResponse](t, w).StockQuantity)
	})
}

func TestPatchSale(t *testing.T) {
	router := initRoutesTests(t)
	ids := seed(t, router, 10)

	w := do(t, router, http.MethodPost, "/sales", saleBody(ids, 1))
	require.Equal(t, http.StatusCreated, w.Code)
	saleID := decode[saleResponse](t, w).ID

	w = do(t, router, http.MethodPatch, "/sales/"+saleID, map[string]string{"status": "active"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPatch, "/sales/"+saleID, map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[cancelSaleResponse](t, w).IsCancelled)
}

func TestCreateSale_Errors(t *testing.T) {
	router := initRoutesTests(t)
	ids := seed(t, router, 5)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"malformed body", "not json", http.StatusBadRequest},
		{"no items", map[string]any{"customer_id": ids.customer, "branch_id": ids.branch, "items": []any{}}, http.StatusBadRequest},
		{"bad uuid", map[string]any{"customer_id": "x", "branch_id": ids.branch, "items": saleBody(ids, 1)["items"]}, http.StatusBadRequest},
		{"zero quantity", saleBody(ids, 0), http.StatusBadRequest},
		{"quantity above limit", saleBody(ids, 21), http.StatusBadRequest},
		{"insufficient stock", saleBody(ids, 6), http.StatusConflict},
		{"unknown customer", func() map[string]any {
			b := saleBody(ids, 1)
			b["customer_id"] = uuid.NewString()
			return b
		}(), http.StatusNotFound},
		{"duplicate product", map[string]any{
			"customer_id": ids.customer,
			"branch_id":   ids.branch,
			"items": []map[string]any{
				{"product_id": ids.product, "quantity": 1},
				{"product_id": ids.product, "quantity": 2},
			},
		}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/sales", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, decode[map[string]any](t, w), "error")
		})
	}

	w := do(t, router, http.MethodGet, "/products/"+ids.product, nil)
	assert.Equal(t, 5, decode[productResponse](t, w).StockQuantity)
}

func TestCreateSale_InactiveReferences(t *testing.T) {
	router := initRoutesTests(t)
	ids := seed(t, router, 5)

	w := do(t, router, http.MethodPost, "/products/"+ids.product+"/deactivate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[productResponse](t, w).IsActive)

	w = do(t, router, http.MethodPost, "/sales", saleBody(ids, 1))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, router, http.MethodPost, "/products/"+ids.product+"/activate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodPost, "/customers/"+ids.customer+"/deactivate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPost, "/sales", saleBody(ids, 1))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, router, http.MethodPost, "/customers/"+ids.customer+"/activate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodPost, "/branches/"+ids.branch+"/deactivate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPost, "/sales", saleBody(ids, 1))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCatalogRoutes(t *testing.T) {
	router := initRoutesTests(t)
	ids := seed(t, router, 5)

	t.Run("duplicate SKU", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/products", map[string]any{
			"name": "Notebook A5", "sku": "NB-A5", "price": "1", "stock_quantity": 1,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid customer", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/customers", map[string]any{"name": "Al", "email": "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("restock", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/products/"+ids.product+"/stock", map[string]any{"quantity": 7})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, 12, decode[productResponse](t, w).StockQuantity)

		w = do(t, router, http.MethodPost, "/products/"+ids.product+"/stock", map[string]any{"quantity": -1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("lists", func(t *testing.T) {
		for _, path := range []string{"/customers", "/branches", "/products"} {
			w := do(t, router, http.MethodGet, path, nil)
			require.Equal(t, http.StatusOK, w.Code, path)
			body := decode[struct {
				Results []map[string]any `json:"results"`
			}](t, w)
			assert.Len(t, body.Results, 1, path)
		}
	})

	t.Run("get", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/customers/"+ids.customer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Ana Souza", decode[customerResponse](t, w).Name)

		w = do(t, router, http.MethodGet, "/branches/"+ids.branch, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "DT-01", decode[branchResponse](t, w).Code)
	})

	t.Run("not found", func(t *testing.T) {
		for _, path := range []string{"/customers/", "/branches/", "/products/", "/sales/"} {
			w := do(t, router, http.MethodGet, path+uuid.NewString(), nil)
			assert.Equal(t, http.StatusNotFound, w.Code, path)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/products/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPingAndMetrics(t *testing.T) {
	router := initRoutesTests(t)

	w := do(t, router, http.MethodGet, "/ping", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	w = do(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `sales_api_http_requests_total{method="GET",route="/ping",status="200"} 1`)
}
